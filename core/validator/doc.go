// Package validator validates structs using `validate` tags.
//
// Rules are separated by semicolons, parameters by commas:
//
//	type CreateItem struct {
//		Name  string `validate:"required;min:3;max:64"`
//		Email string `validate:"email"`
//		Kind  string `validate:"in:book,film"`
//		Qty   int    `validate:"positive"`
//	}
//
//	if err := validator.ValidateStruct(&req); err != nil {
//		var verrs validator.ValidationErrors
//		errors.As(err, &verrs)
//	}
//
// Nested structs without a tag are validated recursively with dotted field
// paths. Unknown rule names are ignored. Custom rules are added with
// RegisterValidator.
package validator
