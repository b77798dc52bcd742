package wire

import (
	"encoding/json"

	"github.com/gorilla/websocket"
)

// JSON encodes envelopes as JSON text frames.
type JSON struct{}

func (JSON) Subprotocol() string { return SubprotocolJSON }
func (JSON) FrameType() int      { return websocket.TextMessage }

func (JSON) Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

func (JSON) Decode(data []byte) (Message, error) {
	var raw struct {
		Type Kind            `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Message{}, err
	}
	return decodePayload(raw.Type, func(v any) error {
		return json.Unmarshal(raw.Data, v)
	})
}
