package journey

import "errors"

var (
	ErrJourneyNotFound   = errors.New("journey not found")
	ErrUnknownStep       = errors.New("unknown step")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNotAwaiting       = errors.New("journey is not awaiting a response")
	ErrNoAnswer          = errors.New("step has no recorded answer")
	ErrInvalidGraph      = errors.New("invalid step graph")
)
