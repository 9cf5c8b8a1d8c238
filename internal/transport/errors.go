package transport

import "errors"

// Errors for store and option handling.
var (
	// ErrUnknownSession is returned when a session token does not exist.
	ErrUnknownSession = errors.New("unknown session")

	// ErrUnknownRequest is returned when a request token was never built
	// or has already been consumed by a send.
	ErrUnknownRequest = errors.New("unknown request")

	// ErrInvalidOptions is returned when request options do not parse
	// into a well-formed configuration.
	ErrInvalidOptions = errors.New("invalid request options")
)
