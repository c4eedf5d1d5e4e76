package service

import "errors"

// Error kinds surfaced by the core pipeline. Handlers map these to HTTP
// status codes and structured error envelopes. External-service failures
// propagate as IndexUnavailable/GenerationUnavailable and are never
// downgraded into fabricated answers.
var (
	ErrUnsupportedFormat     = errors.New("unsupported document format")
	ErrParseFailure          = errors.New("document could not be decoded into text")
	ErrIndexUnavailable      = errors.New("embedding or vector-search service unavailable")
	ErrGenerationUnavailable = errors.New("language-model service unavailable")
	ErrNotFound              = errors.New("referenced file or collection not found")
	ErrInvalidRequest        = errors.New("invalid request")
)
