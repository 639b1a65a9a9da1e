// Package errors defines the typed failures of the homework monitor.
//
// Every failure carries a Kind. Only configuration failures are fatal; all
// other kinds are contained by the poll loop and reported to the chat.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	KindConfiguration Kind = "CONFIGURATION"
	KindStatusCode    Kind = "STATUS_CODE"
	KindTypeMismatch  Kind = "TYPE_MISMATCH"
	KindAnswerShape   Kind = "ANSWER_SHAPE"
	KindMissingName   Kind = "MISSING_NAME"
	KindServerAnswer  Kind = "SERVER_ANSWER"
	KindDelivery      Kind = "DELIVERY"
	KindUnknown       Kind = "UNKNOWN"
)

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrStatusCode    = &Error{Kind: KindStatusCode}
	ErrTypeMismatch  = &Error{Kind: KindTypeMismatch}
	ErrAnswerShape   = &Error{Kind: KindAnswerShape}
	ErrMissingName   = &Error{Kind: KindMissingName}
	ErrServerAnswer  = &Error{Kind: KindServerAnswer}
	ErrDelivery      = &Error{Kind: KindDelivery}
)

// Error is a structured monitor failure.
type Error struct {
	Kind      Kind
	Message   string
	Details   string
	Retryable bool
	Metadata  map[string]interface{}
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether the poll loop may try again after err.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return true
}

// NewConfigurationError reports missing or malformed settings. Fatal.
func NewConfigurationError(details string) *Error {
	return &Error{
		Kind:      KindConfiguration,
		Message:   "missing or invalid configuration",
		Details:   details,
		Retryable: false,
	}
}

// NewMissingVariablesError lists every required variable that is absent.
func NewMissingVariablesError(names []string) *Error {
	e := NewConfigurationError(strings.Join(names, ", "))
	e.Message = "required environment variables are missing"
	e.Metadata = map[string]interface{}{"variables": names}
	return e
}

// NewStatusCodeError reports a non-200 answer from the poll endpoint.
func NewStatusCodeError(endpoint string, params map[string]string, statusCode int, body string) *Error {
	return &Error{
		Kind:      KindStatusCode,
		Message:   fmt.Sprintf("endpoint %s is unavailable", endpoint),
		Details:   fmt.Sprintf("status code %d", statusCode),
		Retryable: true,
		Metadata: map[string]interface{}{
			"endpoint":    endpoint,
			"params":      params,
			"status_code": statusCode,
			"body":        body,
		},
	}
}

// NewEndpointUnreachableError reports a transport failure talking to the poll endpoint.
func NewEndpointUnreachableError(endpoint string, params map[string]string, err error) *Error {
	return &Error{
		Kind:      KindStatusCode,
		Message:   fmt.Sprintf("endpoint %s is unavailable", endpoint),
		Retryable: true,
		Metadata: map[string]interface{}{
			"endpoint": endpoint,
			"params":   params,
		},
		Err: err,
	}
}

// NewTypeMismatchError reports a response that is not a JSON object.
func NewTypeMismatchError(got string) *Error {
	return &Error{
		Kind:      KindTypeMismatch,
		Message:   "response is not an object",
		Details:   fmt.Sprintf("got %s", got),
		Retryable: true,
	}
}

// NewAnswerShapeError reports a homeworks value that is not a list.
func NewAnswerShapeError(got string) *Error {
	return &Error{
		Kind:      KindAnswerShape,
		Message:   "homeworks is not a list",
		Details:   fmt.Sprintf("got %s", got),
		Retryable: true,
	}
}

// NewMissingNameError reports a homework record without a name.
func NewMissingNameError() *Error {
	return &Error{
		Kind:      KindMissingName,
		Message:   "homework has no name",
		Retryable: true,
	}
}

// NewNoExpectedAnswerError is the fallback for responses that match no known shape.
func NewNoExpectedAnswerError(details string) *Error {
	return &Error{
		Kind:      KindServerAnswer,
		Message:   "no expected response code from server",
		Details:   details,
		Retryable: true,
	}
}

// NewUndocumentedStatusError reports a homework status outside the verdict table.
func NewUndocumentedStatusError(status string) *Error {
	return &Error{
		Kind:      KindServerAnswer,
		Message:   "undocumented server response",
		Details:   fmt.Sprintf("status %q", status),
		Retryable: true,
		Metadata:  map[string]interface{}{"status": status},
	}
}

// NewDeliveryError reports a failed chat delivery.
func NewDeliveryError(err error) *Error {
	return &Error{
		Kind:      KindDelivery,
		Message:   "failed to send message to Telegram",
		Retryable: true,
		Err:       err,
	}
}
