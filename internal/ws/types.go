package ws

import (
	"encoding/json"
)

// MessageType names the kind of a websocket message.
type MessageType string

const (
	MessageTypeMove      MessageType = "move"
	MessageTypeDrop      MessageType = "drop"
	MessageTypeAI        MessageType = "ai"
	MessageTypeGameState MessageType = "gameState"
	MessageTypeError     MessageType = "error"
)

type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a message of type t.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}
