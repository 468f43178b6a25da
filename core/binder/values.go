package binder

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Path binds route parameters into v using `path` tags.
func Path(params map[string]string, v any) error {
	values := make(map[string][]string, len(params))
	for k, p := range params {
		values[k] = []string{p}
	}
	return bindValues(v, "path", values, ErrFailedToParsePath)
}

// Query binds query values into v using `query` tags.
func Query(values url.Values, v any) error {
	return bindValues(v, "query", values, ErrFailedToParseQuery)
}

// bindValues binds string values into a struct or string map.
func bindValues(v any, tagName string, values map[string][]string, bindErr error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: %w: expected non-nil pointer, got %T", bindErr, ErrInvalidTarget, v)
	}
	rv = rv.Elem()

	switch rv.Kind() {
	case reflect.Map:
		return bindMap(rv, values, bindErr)
	case reflect.Struct:
	default:
		return fmt.Errorf("%w: %w: unsupported kind %s", bindErr, ErrInvalidTarget, rv.Kind())
	}

	rt := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		name, skip := fieldName(sf, tagName)
		if skip {
			continue
		}

		fieldValues, ok := values[name]
		if !ok || len(fieldValues) == 0 {
			continue
		}

		if err := setField(field, sf.Type, fieldValues); err != nil {
			return fmt.Errorf("%w: field %s: %v", bindErr, sf.Name, err)
		}
	}
	return nil
}

func bindMap(rv reflect.Value, values map[string][]string, bindErr error) error {
	mt := rv.Type()
	if mt.Key().Kind() != reflect.String {
		return fmt.Errorf("%w: %w: map key must be string", bindErr, ErrInvalidTarget)
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(mt, len(values)))
	}

	switch {
	case mt.Elem().Kind() == reflect.String:
		for k, vs := range values {
			if len(vs) > 0 {
				rv.SetMapIndex(reflect.ValueOf(k).Convert(mt.Key()), reflect.ValueOf(sanitize(vs[0])).Convert(mt.Elem()))
			}
		}
	case mt.Elem().Kind() == reflect.Slice && mt.Elem().Elem().Kind() == reflect.String:
		for k, vs := range values {
			clean := reflect.MakeSlice(mt.Elem(), len(vs), len(vs))
			for i, s := range vs {
				clean.Index(i).SetString(sanitize(s))
			}
			rv.SetMapIndex(reflect.ValueOf(k).Convert(mt.Key()), clean)
		}
	default:
		return fmt.Errorf("%w: %w: map value must be string or []string", bindErr, ErrInvalidTarget)
	}
	return nil
}

// fieldName resolves the parameter name for sf under tagName.
func fieldName(sf reflect.StructField, tagName string) (string, bool) {
	tag := sf.Tag.Get(tagName)
	switch tag {
	case "":
		return strings.ToLower(sf.Name), false
	case "-":
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	return name, false
}

func setField(field reflect.Value, ft reflect.Type, values []string) error {
	if ft.Kind() == reflect.Pointer {
		if field.IsNil() {
			field.Set(reflect.New(ft.Elem()))
		}
		return setField(field.Elem(), ft.Elem(), values)
	}
	if ft.Kind() == reflect.Slice {
		return setSlice(field, ft, values)
	}
	if len(values) == 0 {
		return nil
	}
	return setScalar(field, ft, values[0])
}

func setScalar(field reflect.Value, ft reflect.Type, value string) error {
	switch ft.Kind() {
	case reflect.String:
		field.SetString(sanitize(value))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, ft.Bits())
		if err != nil {
			return fmt.Errorf("invalid int value %q", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, ft.Bits())
		if err != nil {
			return fmt.Errorf("invalid uint value %q", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, ft.Bits())
		if err != nil {
			return fmt.Errorf("invalid float value %q", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported type %s", ft.Kind())
	}
	return nil
}

func parseBool(value string) (bool, error) {
	if b, err := strconv.ParseBool(value); err == nil {
		return b, nil
	}
	switch strings.ToLower(value) {
	case "on", "yes":
		return true, nil
	case "off", "no", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool value %q", value)
}

func setSlice(field reflect.Value, ft reflect.Type, values []string) error {
	var all []string
	for _, v := range values {
		all = append(all, strings.Split(v, ",")...)
	}

	slice := reflect.MakeSlice(ft, len(all), len(all))
	for i, v := range all {
		if err := setField(slice.Index(i), ft.Elem(), []string{strings.TrimSpace(v)}); err != nil {
			return err
		}
	}
	field.Set(slice)
	return nil
}

// sanitize strips NUL, CR, LF and non-printable control characters.
func sanitize(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r == utf8.RuneError:
			continue
		case r == '\t':
			b.WriteRune(r)
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
