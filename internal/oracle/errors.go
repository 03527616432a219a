package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RejectedError is an expected refusal by the oracle (HTTP 4xx): an invalid
// coupon, an unknown application and the like.
type RejectedError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("oracle %s rejected with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("oracle %s rejected: %s", e.Op, e.Message)
}

// TransportError covers everything that kept the oracle from answering:
// network failures, timeouts, 5xx responses and unreadable bodies.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("oracle %s unavailable (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("oracle %s unavailable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsRejected(err error) bool {
	var r *RejectedError
	return errors.As(err, &r)
}

func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

// Message returns the user-facing message carried by a rejection, if any.
func Message(err error) string {
	var r *RejectedError
	if errors.As(err, &r) {
		return r.Message
	}
	return ""
}

// errorMessage extracts a human readable message from an error body.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return strings.TrimSpace(string(body))
	}
	if len(eb.Detail) > 0 {
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(eb.Detail, &items); err == nil && len(items) > 0 {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				msgs = append(msgs, it.Msg)
			}
			return strings.Join(msgs, "; ")
		}
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}
