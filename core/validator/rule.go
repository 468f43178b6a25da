package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
)

// Rule pairs a check with the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

func pass() Rule {
	return Rule{Check: func() bool { return true }}
}

func rule(ok bool, field, key, format string, args ...any) Rule {
	values := map[string]any{"field": field}
	for i := 0; i+1 < len(args); i += 2 {
		if k, isKey := args[i].(string); isKey {
			values[k] = args[i+1]
		}
	}
	msgArgs := make([]any, 0, len(args)/2)
	for i := 1; i < len(args); i += 2 {
		msgArgs = append(msgArgs, args[i])
	}
	return Rule{
		Check: func() bool { return ok },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf(format, msgArgs...),
			TranslationKey:    "validation." + key,
			TranslationValues: values,
		},
	}
}

// ValidEmail checks that value is an RFC 5322 address without display name.
func ValidEmail(field, value string) Rule {
	addr, err := mail.ParseAddress(value)
	ok := err == nil && addr.Address == value && strings.Contains(value, "@")
	return rule(ok, field, "email", "must be a valid email address")
}

// ValidURL checks that value is an absolute http(s) URL.
func ValidURL(field, value string) Rule {
	u, err := url.ParseRequestURI(value)
	ok := err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	return rule(ok, field, "url", "must be a valid URL")
}

// ValidUUID checks that value is a UUID, optionally of a given version.
func ValidUUID(field, value string, version int) Rule {
	id, err := uuid.Parse(value)
	ok := err == nil && (version == 0 || int(id.Version()) == version)
	if version > 0 {
		return rule(ok, field, "uuid_version", "must be a valid UUID v%d", "version", version)
	}
	return rule(ok, field, "uuid", "must be a valid UUID")
}

// OneOf checks that value is one of allowed.
func OneOf(field, value string, allowed []string) Rule {
	return rule(slices.Contains(allowed, value), field, "in", "must be one of: %s", "values", strings.Join(allowed, ", "))
}

var (
	regexMu    sync.Mutex
	regexCache = map[string]*regexp.Regexp{}
)

// MatchesRegex checks value against pattern. An invalid pattern fails.
func MatchesRegex(field, value, pattern string) Rule {
	regexMu.Lock()
	re, ok := regexCache[pattern]
	if !ok {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			re = nil
		}
		regexCache[pattern] = re
	}
	regexMu.Unlock()

	return rule(re != nil && re.MatchString(value), field, "regex", "must match pattern %s", "pattern", pattern)
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
