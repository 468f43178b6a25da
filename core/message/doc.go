// Package message defines the transport-neutral Request and Response values
// that adapters translate to and from their native types, plus the typed
// per-request Extensions bag.
//
// Extensions are keyed by Go type:
//
//	type RemoteAddr string
//
//	message.Insert(req.Extensions(), RemoteAddr("10.0.0.1:443"))
//	addr, ok := message.Get[RemoteAddr](req.Extensions())
//
// Values travel with the request, so collaborators such as proxy or KV
// handles reach handlers without the router knowing their types.
package message
