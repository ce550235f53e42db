package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"trustdesk-cli/internal/model"
)

// Kind classifies a failed call.
type Kind string

const (
	KindTransport   Kind = "transport"
	KindValidation  Kind = "validation"
	KindAuth        Kind = "auth"
	KindNotFound    Kind = "not_found"
	KindServer      Kind = "server"
	KindUnsupported Kind = "unsupported"
	KindCanceled    Kind = "canceled"
)

const (
	msgTransport = "could not reach the server"
	msgTimeout   = "the server took too long to respond"
	msgRejected  = "the request was rejected"
	msgAuth      = "your session has expired; please log in again"
	msgNotFound  = "record not found"
	msgServer    = "the server failed to handle the request"
	msgDecode    = "unexpected response from the server"
	msgCanceled  = "request canceled"
)

// Error is the single error type returned by the API client.
type Error struct {
	Kind      Kind
	Status    int
	Message   string
	Fields    map[string][]string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so callers can write errors.Is(err, api.ErrAuth).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrAuth        = &Error{Kind: KindAuth, Message: msgAuth}
	ErrNotFound    = &Error{Kind: KindNotFound, Message: msgNotFound}
	ErrUnsupported = &Error{Kind: KindUnsupported, Message: "operation not supported for this resource"}
)

// Classify maps any error into the API error taxonomy. It returns nil for a
// nil error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var ie *model.InputError
	if errors.As(err, &ie) {
		fields := map[string][]string{}
		for _, f := range ie.Fields {
			fields[f.Field] = append(fields[f.Field], f.Message)
		}
		return &Error{Kind: KindValidation, Message: ie.Error(), Fields: fields, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindCanceled, Message: msgCanceled, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTransport, Message: msgTimeout, Err: err}
	}
	return &Error{Kind: KindTransport, Message: msgTransport, Err: err}
}

// Message is the text to show a person for err.
func Message(err error) string {
	ae := Classify(err)
	if ae == nil {
		return ""
	}
	// Local input errors already list their fields in the message.
	if ae.Kind != KindValidation || len(ae.Fields) == 0 || ae.Err != nil {
		return ae.Message
	}
	keys := make([]string, 0, len(ae.Fields))
	for k := range ae.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(ae.Fields[k], ", "))
	}
	return ae.Message + " (" + strings.Join(parts, "; ") + ")"
}

func IsAuth(err error) bool     { return errors.Is(err, ErrAuth) }
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

// fromResponse builds an Error for a non-2xx response.
func fromResponse(status int, body []byte, requestID string) *Error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	serverMsg := strings.TrimSpace(eb.Message)
	if serverMsg == "" {
		serverMsg = strings.TrimSpace(eb.Error)
	}

	e := &Error{Status: status, RequestID: requestID, Fields: eb.Errors}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
		e.Message = msgAuth
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
		e.Message = msgNotFound
	case status >= 400 && status < 500:
		e.Kind = KindValidation
		e.Message = serverMsg
		if e.Message == "" {
			e.Message = msgRejected
		}
	default:
		e.Kind = KindServer
		e.Message = msgServer
	}
	return e
}
