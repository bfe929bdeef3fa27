package genai

import "errors"

var (
	// ErrMissingAPIKey indicates no credential was supplied for the call.
	ErrMissingAPIKey = errors.New("genai api key missing")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("genai request timed out")

	// ErrUnavailable indicates the upstream service could not be reached.
	ErrUnavailable = errors.New("genai service unavailable")

	// ErrUpstream indicates the service answered with a non-2xx status.
	ErrUpstream = errors.New("genai service returned an error")

	// ErrEmptyResponse indicates the reply carried no candidate text.
	ErrEmptyResponse = errors.New("genai response has no candidates")
)
