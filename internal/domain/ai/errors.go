package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrUnauthorized indicates the provider rejected the credentials (HTTP 401/403).
var ErrUnauthorized = errors.New("ai unauthorized")

// ErrEmptyResponse indicates the provider answered without any choices.
var ErrEmptyResponse = errors.New("ai empty response")

// ErrMissingCredentials is returned at startup when no API key is configured.
var ErrMissingCredentials = errors.New("ai credentials missing")
