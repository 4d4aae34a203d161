package ws_test

import (
	"encoding/json"
	"testing"

	"koma/internal/ws"
)

func TestNewMessage(t *testing.T) {
	msg, err := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: "game not found"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `{"type":"error","payload":{"error":"game not found"}}` {
		t.Fatalf("got %s", got)
	}

	var decoded ws.Message
	if err := json.Unmarshal([]byte(`{"type":"ai"}`), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != ws.MessageTypeAI || decoded.Payload != nil {
		t.Fatalf("decoded %+v", decoded)
	}
}
