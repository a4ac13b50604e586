package aimux

import (
	"errors"
	"fmt"
)

// EmptyPromptErr is returned when a CompletionRequest carries an empty
// prompt. It is raised before any network attempt is made.
var EmptyPromptErr = errors.New("empty prompt: completion requires a non-empty prompt")

// EmptyDescriptionErr is returned when an ImageRequest carries an empty
// description. It is raised before any network attempt is made.
var EmptyDescriptionErr = errors.New("empty description: image generation requires a non-empty description")

// TransportErr is returned when an adapter's outbound call fails below the
// HTTP layer: connection errors, DNS failures, and timeouts. The underlying
// error is available via Unwrap, so context.DeadlineExceeded remains
// detectable with errors.Is.
type TransportErr struct {
	// Cause is the underlying transport error.
	Cause error
}

func (t TransportErr) Error() string {
	return fmt.Sprintf("transport error: %v", t.Cause)
}

// Unwrap returns the underlying transport error.
func (t TransportErr) Unwrap() error {
	return t.Cause
}

// ProviderErr is returned when a provider answers with a non-success status
// code or an explicit error body.
type ProviderErr struct {
	// StatusCode is the HTTP status code, or the provider's error code
	// when the failure was reported in a 200 body.
	StatusCode int
	// Type is a short classification such as "authentication_error" or
	// "service_unavailable".
	Type string
	// Message is the provider-reported detail.
	Message string
}

func (p ProviderErr) Error() string {
	return fmt.Sprintf("provider error (%d %s): %s", p.StatusCode, p.Type, p.Message)
}

// MalformedResponseErr is returned when a provider response cannot be parsed
// or is missing the fields a successful response must carry. A 200 response
// with an empty payload counts as malformed, not as success.
type MalformedResponseErr string

func (m MalformedResponseErr) Error() string {
	return fmt.Sprintf("malformed response: %s", string(m))
}

// ContentPolicyErr is returned when the provider rejects the request or the
// generated content on content/safety grounds.
type ContentPolicyErr string

func (c ContentPolicyErr) Error() string {
	return fmt.Sprintf("content policy violation: %s", string(c))
}

// ConfigurationErr is returned by the factory when a configuration cannot be
// wired into a strategy, e.g. an unrecognized provider selector. It is
// raised synchronously at construction time and is never retried.
type ConfigurationErr string

func (c ConfigurationErr) Error() string {
	return fmt.Sprintf("configuration error: %s", string(c))
}

// statusType classifies an HTTP status code the way provider error bodies
// describe themselves.
func statusType(code int) string {
	switch code {
	case 401:
		return "authentication_error"
	case 403:
		return "permission_error"
	case 404:
		return "not_found_error"
	case 413:
		return "request_too_large"
	case 429:
		return "rate_limit_error"
	case 500:
		return "api_error"
	case 503:
		return "service_unavailable"
	default:
		if code >= 500 {
			return "api_error"
		}
		return "invalid_request_error"
	}
}
