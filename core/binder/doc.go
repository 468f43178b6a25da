// Package binder decodes request data into Go values.
//
// The binders are transport-neutral: they operate on already extracted
// path parameters, query values and buffered payload bytes rather than on
// *http.Request, so they serve every adapter.
//
// Struct fields are matched by tag (`path:"id"`, `query:"page"`,
// `form:"name"`, `file:"avatar"`), defaulting to the lower-cased field
// name. A `-` tag skips the field. Supported field types are strings,
// integers, unsigned integers, floats, bools, pointers to those for optional
// values and slices for multi-value parameters (`?tag=a&tag=b` or
// `?tag=a,b`). Targets may also be map[string]string or
// map[string][]string.
//
//	type ListItems struct {
//		Page  int      `query:"page"`
//		Tags  []string `query:"tag"`
//		Debug *bool    `query:"debug"`
//	}
//
//	var q ListItems
//	if err := binder.Query(u.Query(), &q); err != nil {
//		return err
//	}
//
// String values are sanitized: NUL bytes, CR, LF and other control
// characters except tab are removed.
//
// JSON decodes any target shape and rejects trailing data. JSONStrict also
// rejects unknown object fields. Form accepts
// application/x-www-form-urlencoded and multipart/form-data payloads; file
// parts bind to *multipart.FileHeader or []*multipart.FileHeader fields.
package binder
