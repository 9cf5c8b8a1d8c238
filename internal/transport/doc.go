// Package transport holds the HTTP session and pending-request store used
// by the http_* capabilities.
//
// Sessions and requests are addressed by opaque hex tokens. A session owns
// a cookie jar that every request sent through it shares. Requests are
// built in one step (pure validation, no I/O) and sent in another; sending
// consumes the request token, so a second send on the same token fails
// with ErrUnknownRequest instead of resending.
//
// A Store is owned by exactly one script execution context and is not safe
// for concurrent use.
package transport
