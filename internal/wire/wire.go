// Package wire defines the messages gatewatch sends to observers and the
// codecs that serialize them.
//
// Every message is an Envelope {type, data}. The codec is picked per
// connection by WebSocket subprotocol negotiation: SubprotocolJSON (the
// default) or SubprotocolCBOR.
package wire

import (
	"fmt"

	"github.com/rileyhilliard/gatewatch/internal/sampler"
)

// Kind names the payload carried by an Envelope.
type Kind string

// Server-to-client message kinds.
const (
	KindStaticFacts    Kind = "staticFacts"
	KindDynamicFacts   Kind = "dynamicFacts"
	KindAnalogReadings Kind = "analogReadings"
)

// Subprotocols offered by the server, in preference order.
const (
	SubprotocolJSON = "gatewatch.json"
	SubprotocolCBOR = "gatewatch.cbor"
)

// Subprotocols lists every supported subprotocol.
var Subprotocols = []string{SubprotocolJSON, SubprotocolCBOR}

// Envelope is the outbound message frame.
type Envelope struct {
	Type Kind `json:"type"`
	Data any  `json:"data"`
}

// Message is a decoded inbound envelope. Exactly one payload field is set,
// matching Kind.
type Message struct {
	Kind    Kind
	Static  *sampler.StaticFacts
	Dynamic *sampler.DynamicFacts
	Analog  sampler.AnalogReadings
}

// Codec serializes envelopes for one subprotocol.
type Codec interface {
	// Subprotocol is the negotiated WebSocket subprotocol name.
	Subprotocol() string
	// FrameType is websocket.TextMessage or websocket.BinaryMessage.
	FrameType() int
	Encode(env Envelope) ([]byte, error)
	Decode(data []byte) (Message, error)
}

// ForSubprotocol returns the codec for a negotiated subprotocol. An empty
// or unknown name selects JSON.
func ForSubprotocol(name string) Codec {
	if name == SubprotocolCBOR {
		return CBOR{}
	}
	return JSON{}
}

// decodePayload unmarshals data into the payload type matching kind.
func decodePayload(kind Kind, unmarshal func(v any) error) (Message, error) {
	msg := Message{Kind: kind}
	var err error
	switch kind {
	case KindStaticFacts:
		msg.Static = &sampler.StaticFacts{}
		err = unmarshal(msg.Static)
	case KindDynamicFacts:
		msg.Dynamic = &sampler.DynamicFacts{}
		err = unmarshal(msg.Dynamic)
	case KindAnalogReadings:
		msg.Analog = sampler.AnalogReadings{}
		err = unmarshal(&msg.Analog)
	default:
		return Message{}, fmt.Errorf("unknown message type %q", kind)
	}
	if err != nil {
		return Message{}, fmt.Errorf("decode %s: %w", kind, err)
	}
	return msg, nil
}
