// Package apperr defines the closed error taxonomy used across the client
// core. Every network, protocol, authorization and local-storage failure is
// classified into exactly one of these kinds before it crosses a component
// boundary; raw transport errors never escape the transport layer.
package apperr

import (
	"encoding/json"
	"fmt"
)

// Kind identifies one classified failure in the taxonomy.
type Kind int

const (
	// KindUnknown is the generic catch-all for failures that fit nowhere else.
	KindUnknown Kind = iota
	// KindRequestTimeout covers connection and request timeouts (and HTTP 408).
	KindRequestTimeout
	// KindTooManyRequests covers HTTP 429 rate limiting.
	KindTooManyRequests
	// KindNoInternet covers DNS and host-unreachable failures.
	KindNoInternet
	// KindServer covers HTTP 5xx responses without a structured envelope.
	KindServer
	// KindSerialization covers malformed or shape-mismatched response bodies.
	KindSerialization
	// KindUnauthorized covers authorization loss on any channel.
	KindUnauthorized
	// KindRemoteUnknown is the remote-side catch-all.
	KindRemoteUnknown
	// KindAPIError is a structured server error; the only kind carrying
	// server-supplied free text.
	KindAPIError
	// KindDiskFull covers local storage writes failing for lack of space.
	KindDiskFull
	// KindLocalUnknown is the local-storage catch-all.
	KindLocalUnknown
)

// Error is a classified application error. Exactly one is produced per
// failure; components compare kinds, never error strings.
type Error struct {
	Kind Kind

	// APIMessage and Detail are populated only for KindAPIError.
	APIMessage string
	Detail     string

	// Context is populated only for KindUnknown and carries a short
	// description of the original failure for logs.
	Context string
}

// Error implements the error interface with the user-facing message.
func (e *Error) Error() string { return e.Message() }

// Message returns the fixed human-readable message for the error kind.
// APIError is the one kind that prefers server-supplied text, with the
// detail field winning over the message field.
func (e *Error) Message() string {
	switch e.Kind {
	case KindRequestTimeout:
		return "Request timed out"
	case KindTooManyRequests:
		return "Too many requests"
	case KindNoInternet:
		return "No internet connection"
	case KindServer:
		return "Server error"
	case KindSerialization:
		return "Serialization error"
	case KindUnauthorized:
		return "Unauthorized"
	case KindRemoteUnknown:
		return "Unknown error"
	case KindAPIError:
		if e.Detail != "" {
			return e.Detail
		}
		return e.APIMessage
	case KindDiskFull:
		return "Disk full"
	case KindLocalUnknown:
		return "Unknown error occurred"
	default:
		return "Unknown error occurred"
	}
}

// Is reports whether target is an *Error of the same kind. It makes taxonomy
// values work with errors.Is without comparing free text.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Kind == e.Kind
}

// RequestTimeout returns the connectivity timeout error.
func RequestTimeout() *Error { return &Error{Kind: KindRequestTimeout} }

// TooManyRequests returns the rate-limit error.
func TooManyRequests() *Error { return &Error{Kind: KindTooManyRequests} }

// NoInternet returns the unreachable-host error.
func NoInternet() *Error { return &Error{Kind: KindNoInternet} }

// Server returns the plain 5xx error.
func Server() *Error { return &Error{Kind: KindServer} }

// Serialization returns the malformed-body error.
func Serialization() *Error { return &Error{Kind: KindSerialization} }

// Unauthorized returns the authorization-loss error.
func Unauthorized() *Error { return &Error{Kind: KindUnauthorized} }

// RemoteUnknown returns the remote catch-all error.
func RemoteUnknown() *Error { return &Error{Kind: KindRemoteUnknown} }

// API returns a structured server error carrying its free text.
func API(message, detail string) *Error {
	return &Error{Kind: KindAPIError, APIMessage: message, Detail: detail}
}

// DiskFull returns the local out-of-space error.
func DiskFull() *Error { return &Error{Kind: KindDiskFull} }

// LocalUnknown returns the local catch-all error.
func LocalUnknown() *Error { return &Error{Kind: KindLocalUnknown} }

// Unknown returns the generic catch-all with a short context string.
func Unknown(format string, args ...any) *Error {
	return &Error{Kind: KindUnknown, Context: fmt.Sprintf(format, args...)}
}

// envelope mirrors the server's standard error body:
// {"error":{"message":...,"data":{"detail":...,"req_uuid":...}}}.
type envelope struct {
	Error envelopeContent `json:"error"`
}

type envelopeContent struct {
	Message string       `json:"message"`
	Data    envelopeData `json:"data"`
}

type envelopeData struct {
	Detail  string `json:"detail"`
	ReqUUID string `json:"req_uuid"`
}

// DecodeEnvelope parses the structured server error envelope from a non-2xx
// response body. It reports false when the body is not a valid envelope.
func DecodeEnvelope(body []byte) (*Error, bool) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	if env.Error.Message == "" && env.Error.Data.Detail == "" {
		return nil, false
	}
	return API(env.Error.Message, env.Error.Data.Detail), true
}
