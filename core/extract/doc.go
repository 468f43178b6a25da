// Package extract provides typed request extractors and adapters binding
// them to handler arguments.
//
// An Extractor derives a value from a *handler.Context. Built-in
// extractors decode JSON bodies, query strings, path parameters and forms,
// optionally followed by `validate` tag checks, and expose headers, the
// host, and the kv and proxy collaborators injected by the adapter.
//
//	type createUser struct {
//		Name  string `json:"name" validate:"required;min:3"`
//		Email string `json:"email" validate:"required;email"`
//	}
//
//	r.Route(http.MethodPost, "/users", extract.Handle1(
//		extract.ValidatedJSON[createUser](),
//		func(ctx *handler.Context, in createUser) (*message.Response, error) {
//			return response.JSONWithStatus(http.StatusCreated, in)
//		},
//	))
//
// Decoding failures are BadRequest errors and rule failures are Validation
// errors, so the router renders them as 400 and 422 responses.
package extract
