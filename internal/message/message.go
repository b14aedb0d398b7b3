// Package message defines the clipmunk wire protocol.
//
// All messages are newline-delimited JSON, one message per line. Requests
// carry an ID; the reply to a request echoes it.
//
//	CALL      channel + method + args  → RESULT | ERROR | NOT_IMPLEMENTED
//	INVOKE    service                  → RESULT | ERROR
//	SERVICES                           → RESULT (services filled in)
//	PING                               → PONG
package message

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Type identifies the kind of message.
type Type string

const (
	TypeCall           Type = "CALL"
	TypeInvoke         Type = "INVOKE"
	TypeServices       Type = "SERVICES"
	TypePing           Type = "PING"
	TypePong           Type = "PONG"
	TypeResult         Type = "RESULT"
	TypeError          Type = "ERROR"
	TypeNotImplemented Type = "NOT_IMPLEMENTED"
)

// Error codes set by the server itself (channel handlers add their own).
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeUnknownService = "UNKNOWN_SERVICE"
	CodeServiceError   = "SERVICE_ERROR"
	CodeInternal       = "INTERNAL"
)

// ErrorInfo is the payload of an ERROR reply.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type   `json:"type"`
	ID   string `json:"id,omitempty"`

	// CALL
	Channel string          `json:"channel,omitempty"`
	Method  string          `json:"method,omitempty"`
	Args    json.RawMessage `json:"args,omitempty"`

	// INVOKE
	Service string `json:"service,omitempty"`

	// RESULT
	Result   json.RawMessage `json:"result,omitempty"`
	Services []string        `json:"services,omitempty"`

	// ERROR
	Error *ErrorInfo `json:"error,omitempty"`
}

// NewID returns a fresh request identifier.
func NewID() string { return uuid.NewString() }

// NewCall builds a CALL request, encoding args as JSON. A nil args is sent
// without an args field.
func NewCall(channel, method string, args any) (*Message, error) {
	m := &Message{Type: TypeCall, ID: NewID(), Channel: channel, Method: method}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("encode args: %w", err)
		}
		m.Args = raw
	}
	return m, nil
}

// NewInvoke builds an INVOKE request for service.
func NewInvoke(service string) *Message {
	return &Message{Type: TypeInvoke, ID: NewID(), Service: service}
}

// Reply returns an empty reply of type t correlated with m.
func (m *Message) Reply(t Type) *Message {
	return &Message{Type: t, ID: m.ID}
}

// Fail returns an ERROR reply correlated with m.
func (m *Message) Fail(code, msg string, details any) *Message {
	r := m.Reply(TypeError)
	r.Error = &ErrorInfo{Code: code, Message: msg, Details: details}
	return r
}

// DecodeArgs returns the decoded CALL arguments: nil for an absent or null
// args field, otherwise the generic JSON value (map[string]any, []any, ...).
func (m *Message) DecodeArgs() (any, error) {
	if len(m.Args) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(m.Args, &v); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	return v, nil
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}
