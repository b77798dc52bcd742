package viewer

import (
	"time"

	"github.com/rileyhilliard/gatewatch/internal/sampler"
	"github.com/rileyhilliard/gatewatch/internal/wire"
)

// State keeps only the most recent payload of each kind.
type State struct {
	Static     *sampler.StaticFacts
	Dynamic    *sampler.DynamicFacts
	Analog     sampler.AnalogReadings
	LastUpdate time.Time
	Received   int
}

// Apply replaces the payload matching msg's kind.
func (s *State) Apply(msg wire.Message, at time.Time) {
	switch msg.Kind {
	case wire.KindStaticFacts:
		s.Static = msg.Static
	case wire.KindDynamicFacts:
		s.Dynamic = msg.Dynamic
	case wire.KindAnalogReadings:
		s.Analog = msg.Analog
	default:
		return
	}
	s.LastUpdate = at
	s.Received++
}
