package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// CurrentVersion is the message version written by this service.
const CurrentVersion = 1

// Message asks a worker to run an assessment for one owner.
type Message struct {
	OwnerID    string `json:"ownerId"`
	RequestID  string `json:"requestId,omitempty"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// ErrInvalidMessage wraps schema violations.
var ErrInvalidMessage = errors.New("invalid queue message")

const messageSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["ownerId", "version"],
  "properties": {
    "ownerId":    {"type": "string"},
    "requestId":  {"type": "string"},
    "enqueuedAt": {"type": "string"},
    "version":    {"type": "integer", "minimum": 1}
  }
}`

var schema = mustSchema(messageSchema)

func mustSchema(raw string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("queue message schema: %v", err))
	}
	return s
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	if msg.Version == 0 {
		msg.Version = CurrentVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage validates the payload against the message schema and parses
// it. Malformed JSON is returned as a plain decode error; schema violations
// wrap ErrInvalidMessage.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return Message{}, err
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return msg, fmt.Errorf("%w: %s", ErrInvalidMessage, strings.Join(problems, "; "))
	}
	return msg, nil
}
