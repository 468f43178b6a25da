package binder

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
)

// DefaultMaxMemory bounds the in-memory part of a multipart form (10MB).
const DefaultMaxMemory = 10 << 20

// Form decodes a buffered urlencoded or multipart payload into v using
// `form` and `file` tags. An empty contentType is treated as urlencoded.
func Form(contentType string, data []byte, v any) error {
	mt := mediaType(contentType)

	switch mt {
	case "", "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
		}
		return bindValues(v, "form", values, ErrFailedToParseForm)

	case "multipart/form-data":
		_, params, err := mime.ParseMediaType(contentType)
		if err != nil {
			return fmt.Errorf("%w: malformed content type", ErrFailedToParseForm)
		}
		boundary := params["boundary"]
		if !validBoundary(boundary) {
			return fmt.Errorf("%w: invalid boundary parameter", ErrFailedToParseForm)
		}

		form, err := multipart.NewReader(bytes.NewReader(data), boundary).ReadForm(DefaultMaxMemory)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
		}
		if err := bindValues(v, "form", form.Value, ErrFailedToParseForm); err != nil {
			return err
		}
		return bindFiles(v, form.File)

	default:
		return fmt.Errorf("%w: got %s, expected application/x-www-form-urlencoded or multipart/form-data", ErrUnsupportedMediaType, mt)
	}
}

var fileHeaderType = reflect.TypeFor[*multipart.FileHeader]()

func bindFiles(v any, files map[string][]*multipart.FileHeader) error {
	rv := reflect.ValueOf(v).Elem()
	if rv.Kind() != reflect.Struct || len(files) == 0 {
		return nil
	}

	rt := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)
		tag := sf.Tag.Get("file")
		if tag == "" || tag == "-" || !field.CanSet() {
			continue
		}

		headers := files[tag]
		if len(headers) == 0 {
			continue
		}
		for _, fh := range headers {
			fh.Filename = sanitizeFilename(fh.Filename)
		}

		switch {
		case sf.Type == fileHeaderType:
			field.Set(reflect.ValueOf(headers[0]))
		case sf.Type.Kind() == reflect.Slice && sf.Type.Elem() == fileHeaderType:
			field.Set(reflect.ValueOf(headers))
		default:
			return fmt.Errorf("%w: field %s: unsupported file field type %v", ErrFailedToParseForm, sf.Name, sf.Type)
		}
	}
	return nil
}

func validBoundary(boundary string) bool {
	if boundary == "" || len(boundary) > 100 {
		return false
	}
	return !strings.ContainsAny(boundary, "\x00\r\n")
}

// sanitizeFilename drops directory components from an uploaded file name.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.ReplaceAll(filepath.Base(name), "\x00", "")
	if name == "." || name == ".." || name == "" || name == "/" {
		return "unnamed"
	}
	return name
}
