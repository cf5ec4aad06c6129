package domain

import "errors"

var (
	// ErrGatewayUnavailable means the model call itself failed or timed out.
	ErrGatewayUnavailable = errors.New("language model gateway unavailable")

	// ErrMalformedOutput means the call succeeded but the response did not
	// parse or did not match the expected shape.
	ErrMalformedOutput = errors.New("language model output malformed")
)
