package wire

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"
)

// encMode uses Core Deterministic Encoding so identical payloads produce
// identical frames. Struct fields fall back to their json tags.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("wire: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("wire: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOR encodes envelopes as CBOR binary frames.
type CBOR struct{}

func (CBOR) Subprotocol() string { return SubprotocolCBOR }
func (CBOR) FrameType() int      { return websocket.BinaryMessage }

func (CBOR) Encode(env Envelope) ([]byte, error) {
	return encMode.Marshal(env)
}

func (CBOR) Decode(data []byte) (Message, error) {
	var raw struct {
		Type Kind            `json:"type"`
		Data cbor.RawMessage `json:"data"`
	}
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return Message{}, err
	}
	return decodePayload(raw.Type, func(v any) error {
		return decMode.Unmarshal(raw.Data, v)
	})
}
