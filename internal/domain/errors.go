package domain

import "errors"

var (
	// ErrInvalidParameter signals that a request parameter is missing,
	// non-positive, non-finite, or otherwise outside the accepted range.
	// Handlers recover from it by re-rendering the form.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrRenderFailure signals that the drawing backend could not produce
	// a document. It is surfaced to the client as a generic failure.
	ErrRenderFailure = errors.New("render failure")
)
