// Package apierr is the error taxonomy of the REST collaborator: field-level
// validation failures, generic failures carrying a detail message, and
// transport failures with no body at all.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrServer   = errors.New("server error")
)

// NonFieldKey holds messages not tied to a single field.
const NonFieldKey = "non_field_errors"

// ValidationError is a rejected write, keyed by field name.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Summary()
}

// Add appends a message for field, creating the map on first use.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Field returns the first message for field, or "".
func (e *ValidationError) Field(name string) string {
	if msgs := e.Fields[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// OrNil lets validators build an error incrementally and return nil when
// nothing was added.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Summary joins every message into one line, non-field messages first and
// then fields in name order.
func (e *ValidationError) Summary() string {
	var parts []string
	parts = append(parts, e.Fields[NonFieldKey]...)

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		if name != NonFieldKey {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], " "))
	}
	return strings.Join(parts, "; ")
}

// Error is a rejected request with a generic detail message.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Detail)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServer:
		return e.Status >= 500
	}
	return false
}

// NotFound builds a 404 error with a detail message.
func NotFound(detail string) *Error {
	return &Error{Status: http.StatusNotFound, Detail: detail}
}

// NetworkError wraps a transport failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Decode turns a rejected response body into the matching error shape. A
// body with only a "detail" key is a generic error even on 400.
func Decode(status int, body []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return &Error{Status: status, Detail: fallbackDetail(status, body)}
	}

	if detail, ok := raw["detail"]; ok && len(raw) == 1 {
		return &Error{Status: status, Detail: messages(detail)[0]}
	}

	if status != http.StatusBadRequest {
		if detail, ok := raw["detail"]; ok {
			return &Error{Status: status, Detail: messages(detail)[0]}
		}
		return &Error{Status: status, Detail: fallbackDetail(status, body)}
	}

	verr := &ValidationError{}
	for field, value := range raw {
		for _, msg := range messages(value) {
			verr.Add(field, msg)
		}
	}
	return verr
}

// messages flattens a field value that may be a string, a list of strings,
// or anything else.
func messages(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list
	}
	return []string{strings.TrimSpace(string(raw))}
}

func fallbackDetail(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" || strings.HasPrefix(text, "<") {
		return http.StatusText(status)
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

// Message returns a human-readable string for any error the collaborator
// can produce.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Summary()
	}

	var aerr *Error
	if errors.As(err, &aerr) {
		if aerr.Detail != "" {
			return aerr.Detail
		}
		return http.StatusText(aerr.Status)
	}

	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return "Network error, please check your connection and try again."
	}

	return err.Error()
}
