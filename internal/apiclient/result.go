package apiclient

import (
	"encoding/json"
	"fmt"
)

type Kind string

const (
	// KindRequest means the request could not be built (bad URL, unencodable body).
	KindRequest Kind = "request"
	// KindTransport means no response was received.
	KindTransport Kind = "transport"
	// KindHTTPStatus means the backend answered with a non-2xx status.
	KindHTTPStatus Kind = "http_status"
	// KindInvalidResponse means the body was declared JSON but could not be decoded.
	KindInvalidResponse Kind = "invalid_response"
	// KindAuth means no bearer token could be obtained for the call.
	KindAuth Kind = "auth"
)

// Failure describes why a request did not succeed. StatusCode is zero when
// no HTTP status was received.
type Failure struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"error"`
	StatusCode int    `json:"status,omitempty"`
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", f.Kind, f.StatusCode, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) HasStatus() bool {
	return f.StatusCode != 0
}

// Result is either a success carrying data or a failure, never both.
type Result[T any] struct {
	data    T
	failure *Failure
}

func Success[T any](data T) Result[T] {
	return Result[T]{data: data}
}

// Fail builds a failed Result. An empty message is replaced so that a
// failure always says something.
func Fail[T any](kind Kind, message string, status int) Result[T] {
	if message == "" {
		message = "unknown error"
	}
	return Result[T]{failure: &Failure{Kind: kind, Message: message, StatusCode: status}}
}

func (r Result[T]) OK() bool {
	return r.failure == nil
}

// Data returns the success payload, or the zero value of T for a failure.
func (r Result[T]) Data() T {
	return r.data
}

func (r Result[T]) Err() *Failure {
	return r.failure
}

// As reinterprets a raw payload as the caller's expected shape. JSON bodies
// are unmarshalled into T. Text bodies (and empty JSON ones) can only become
// a string, an any holding the string, or a json.RawMessage holding it as a
// JSON string. Nothing beyond decoding is checked.
func As[T any](r Result[Payload]) Result[T] {
	if f := r.Err(); f != nil {
		return Result[T]{failure: f}
	}
	p := r.Data()

	var out T
	if p.JSON && len(p.Raw) > 0 {
		if err := json.Unmarshal(p.Raw, &out); err != nil {
			return Fail[T](KindInvalidResponse, "decode response: "+err.Error(), p.Status)
		}
		return Success(out)
	}

	switch dst := any(&out).(type) {
	case *string:
		*dst = string(p.Raw)
	case *any:
		*dst = string(p.Raw)
	case *json.RawMessage:
		data, err := json.Marshal(string(p.Raw))
		if err != nil {
			return Fail[T](KindInvalidResponse, "encode text response: "+err.Error(), p.Status)
		}
		*dst = data
	default:
		return Fail[T](KindInvalidResponse,
			fmt.Sprintf("expected a JSON response, got %q", p.ContentType), p.Status)
	}
	return Success(out)
}
