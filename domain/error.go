// Package domain defines error types for the storefront client.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fetch failure at the point it occurs, replacing
// fragile message-substring matching downstream.
type ErrorKind int

const (
	// KindUnknown covers failures with no more specific classification.
	KindUnknown ErrorKind = iota
	// KindTimeout is a request that exceeded its deadline.
	KindTimeout
	// KindNetwork is a network-level failure with no HTTP response.
	KindNetwork
	// KindTunnelHTML is an HTML body from a tunnel host (expired tunnel).
	KindTunnelHTML
	// KindGenericHTML is an HTML body from a non-tunnel host.
	KindGenericHTML
	// KindMalformed is a body that is not a JSON object.
	KindMalformed
	// KindAppFailure is a well-formed envelope with Success != true.
	KindAppFailure
	// KindUnauthorized is HTTP 401.
	KindUnauthorized
	// KindForbidden is HTTP 403.
	KindForbidden
	// KindNotFound is HTTP 404.
	KindNotFound
)

// FetchError is returned for any failed catalog fetch attempt.
type FetchError struct {
	Kind   ErrorKind
	Status int // HTTP status if a response was received, else 0
	Detail string
}

// Error implements the error interface for FetchError
func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch failed: kind=%d, status=%d, detail=%s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("fetch failed: kind=%d, detail=%s", e.Kind, e.Detail)
}

// Is matches any FetchError of the same kind, so sentinel comparisons with
// errors.Is work.
func (e *FetchError) Is(target error) bool {
	var fe *FetchError
	if !errors.As(target, &fe) {
		return false
	}
	return fe.Kind == e.Kind
}

// Retriable reports whether the failure is worth another attempt: timeouts,
// network-level failures, and HTTP 408/429/5xx.
func (e *FetchError) Retriable() bool {
	switch e.Kind {
	case KindTimeout, KindNetwork:
		return true
	}
	return e.Status == 408 || e.Status == 429 || e.Status >= 500
}

// UserMessage converts the failure into the fixed human-readable string
// surfaced in catalog state.
func (e *FetchError) UserMessage() string {
	switch e.Kind {
	case KindTimeout:
		return "Request timed out. Please try again later."
	case KindNetwork:
		return "Network error. Please check your internet connection."
	case KindTunnelHTML:
		return "Ngrok tunnel issue: " + e.Detail
	case KindGenericHTML:
		return "Server returned a webpage instead of data. API endpoint may be misconfigured."
	case KindUnauthorized:
		return "You are not authorized to access this data."
	case KindForbidden:
		return "You do not have permission to access this data."
	case KindNotFound:
		return "The requested resource was not found."
	}
	return "Failed to fetch products"
}

// Helper functions for creating errors with context

// NewTimeoutError creates a FetchError for an exceeded request deadline.
func NewTimeoutError(detail string) error {
	return &FetchError{Kind: KindTimeout, Detail: detail}
}

// NewNetworkError creates a FetchError for a failure with no HTTP response.
func NewNetworkError(detail string) error {
	return &FetchError{Kind: KindNetwork, Detail: detail}
}

// NewHTMLBodyError creates a FetchError for an HTML body where JSON was
// expected. Tunnel hosts get their own kind so the message can point at an
// expired tunnel rather than a misconfigured endpoint.
func NewHTMLBodyError(tunnel bool) error {
	if tunnel {
		return &FetchError{
			Kind:   KindTunnelHTML,
			Detail: "Your ngrok tunnel returned an HTML page instead of JSON data. The tunnel may have expired.",
		}
	}
	return &FetchError{
		Kind:   KindGenericHTML,
		Detail: "API returned HTML instead of JSON. API endpoint may be misconfigured.",
	}
}

// NewMalformedResponseError creates a FetchError for a non-object body.
func NewMalformedResponseError() error {
	return &FetchError{Kind: KindMalformed, Detail: "Invalid response format: not a JSON object"}
}

// NewAppFailureError creates a FetchError for an envelope whose Success
// flag is not true. An empty message falls back to a default.
func NewAppFailureError(message string) error {
	if message == "" {
		message = "API returned success: false"
	}
	return &FetchError{Kind: KindAppFailure, Detail: message}
}

// NewStatusError creates a FetchError for a non-2xx HTTP status.
func NewStatusError(status int, detail string) error {
	kind := KindUnknown
	switch status {
	case 401:
		kind = KindUnauthorized
	case 403:
		kind = KindForbidden
	case 404:
		kind = KindNotFound
	}
	return &FetchError{Kind: kind, Status: status, Detail: detail}
}

// Type assertion helpers for use with errors.As()

// IsFetchError checks if an error is a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// KindOf returns the classification of err, or KindUnknown for errors that
// are not FetchErrors.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsRetriable reports whether err is a FetchError worth retrying.
func IsRetriable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Retriable()
}
