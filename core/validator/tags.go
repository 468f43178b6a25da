package validator

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// ValidatorFunc builds a Rule for value tagged on field.
type ValidatorFunc func(field string, value reflect.Value, params []string) Rule

var (
	registryMu sync.RWMutex
	registry   = map[string]ValidatorFunc{
		"required": requiredValidator,
		"min":      minValidator,
		"max":      maxValidator,
		"len":      lenValidator,
		"email":    stringValidator(ValidEmail),
		"url":      stringValidator(ValidURL),
		"uuid":     uuidValidator,
		"alphanum": alphanumValidator,
		"numeric":  numericValidator,
		"in":       inValidator,
		"prefix":   prefixValidator,
		"suffix":   suffixValidator,
		"regex":    regexValidator,
		"positive": positiveValidator,
	}
)

// RegisterValidator adds or replaces a named rule.
func RegisterValidator(name string, fn ValidatorFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// ValidateStruct validates v, a pointer to struct, returning
// ValidationErrors when any rule fails.
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}

	var errs ValidationErrors
	validateStruct(rv.Elem(), "", &errs)
	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func validateStruct(rv reflect.Value, prefix string, errs *ValidationErrors) {
	rt := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("validate")
		if tag == "-" {
			continue
		}

		path := sf.Name
		if prefix != "" {
			path = prefix + "." + sf.Name
		}

		if field.Kind() == reflect.Pointer && !field.IsNil() {
			field = field.Elem()
		}
		if field.Kind() == reflect.Struct && tag == "" {
			validateStruct(field, path, errs)
			continue
		}
		if tag != "" {
			validateField(path, field, tag, errs)
		}
	}
}

func validateField(path string, field reflect.Value, tag string, errs *ValidationErrors) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for raw := range strings.SplitSeq(tag, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		name, paramStr, _ := strings.Cut(raw, ":")
		var params []string
		if paramStr = strings.TrimSpace(paramStr); paramStr != "" {
			for p := range strings.SplitSeq(paramStr, ",") {
				params = append(params, strings.TrimSpace(p))
			}
		}

		fn, ok := registry[strings.TrimSpace(name)]
		if !ok {
			continue
		}
		// Nil pointers are only checked by required.
		if field.Kind() == reflect.Pointer && field.IsNil() && name != "required" {
			continue
		}
		if r := fn(path, field, params); !r.Check() {
			errs.Add(r.Error)
		}
	}
}

func stringValidator(fn func(field, value string) Rule) ValidatorFunc {
	return func(field string, value reflect.Value, _ []string) Rule {
		if value.Kind() != reflect.String || value.String() == "" {
			return pass()
		}
		return fn(field, value.String())
	}
}

func requiredValidator(field string, value reflect.Value, _ []string) Rule {
	var ok bool
	switch value.Kind() {
	case reflect.String:
		ok = strings.TrimSpace(value.String()) != ""
	case reflect.Slice, reflect.Map, reflect.Array:
		ok = value.Len() > 0
	case reflect.Pointer, reflect.Interface:
		ok = !value.IsNil()
	case reflect.Invalid:
		ok = false
	default:
		ok = !value.IsZero()
	}
	return rule(ok, field, "required", "field is required")
}

type bound int

const (
	lower bound = iota
	upper
	exact
)

func compare(b bound, n, limit float64) bool {
	switch b {
	case lower:
		return n >= limit
	case upper:
		return n <= limit
	default:
		return n == limit
	}
}

var boundWords = map[bound]string{lower: "at least", upper: "at most", exact: "exactly"}

func sizeValidator(b bound, key string) ValidatorFunc {
	return func(field string, value reflect.Value, params []string) Rule {
		if len(params) < 1 {
			return pass()
		}
		limit, err := strconv.ParseFloat(params[0], 64)
		if err != nil {
			return pass()
		}
		word := boundWords[b]

		switch value.Kind() {
		case reflect.String:
			n := float64(utf8.RuneCountInString(value.String()))
			return rule(compare(b, n, limit), field, key+"_length", "must be %s %s characters long", "qualifier", word, key, params[0])
		case reflect.Slice, reflect.Array, reflect.Map:
			return rule(compare(b, float64(value.Len()), limit), field, key+"_items", "must have %s %s items", "qualifier", word, key, params[0])
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rule(compare(b, float64(value.Int()), limit), field, key, "must be %s %s", "qualifier", word, key, params[0])
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return rule(compare(b, float64(value.Uint()), limit), field, key, "must be %s %s", "qualifier", word, key, params[0])
		case reflect.Float32, reflect.Float64:
			return rule(compare(b, value.Float(), limit), field, key, "must be %s %s", "qualifier", word, key, params[0])
		default:
			return pass()
		}
	}
}

var (
	minValidator = sizeValidator(lower, "min")
	maxValidator = sizeValidator(upper, "max")
	lenValidator = sizeValidator(exact, "len")
)

func uuidValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String || value.String() == "" {
		return pass()
	}
	version := 0
	if len(params) > 0 {
		version, _ = strconv.Atoi(params[0])
	}
	return ValidUUID(field, value.String(), version)
}

func alphanumValidator(field string, value reflect.Value, _ []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	return rule(isAlphanumeric(value.String()), field, "alphanum", "must contain only letters and digits")
}

func numericValidator(field string, value reflect.Value, _ []string) Rule {
	if value.Kind() != reflect.String || value.String() == "" {
		return pass()
	}
	return rule(isNumeric(value.String()), field, "numeric", "must contain only digits")
}

func inValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) == 0 {
		return pass()
	}
	switch value.Kind() {
	case reflect.String:
		return OneOf(field, value.String(), params)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return OneOf(field, strconv.FormatInt(value.Int(), 10), params)
	default:
		return pass()
	}
}

func prefixValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String || len(params) == 0 {
		return pass()
	}
	return rule(strings.HasPrefix(value.String(), params[0]), field, "prefix", "must start with %s", "prefix", params[0])
}

func suffixValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String || len(params) == 0 {
		return pass()
	}
	return rule(strings.HasSuffix(value.String(), params[0]), field, "suffix", "must end with %s", "suffix", params[0])
}

func regexValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String || len(params) == 0 {
		return pass()
	}
	// The pattern may itself contain commas.
	return MatchesRegex(field, value.String(), strings.Join(params, ","))
}

func positiveValidator(field string, value reflect.Value, _ []string) Rule {
	var ok bool
	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		ok = value.Int() > 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		ok = value.Uint() > 0
	case reflect.Float32, reflect.Float64:
		ok = value.Float() > 0
	default:
		return pass()
	}
	return rule(ok, field, "positive", "must be positive")
}
