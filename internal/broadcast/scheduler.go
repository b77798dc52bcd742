// Package broadcast drives sampling from the observer lifecycle.
//
// A Registry tracks connected observers. A Scheduler listens to it: the
// first observer arms a one-second ticker, the last one to leave disarms
// it, and every tick samples dynamic facts and analog readings and pushes
// them to whoever is connected at that moment. Each joining observer gets
// the session's static facts on its own.
package broadcast

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/gatewatch/internal/clock"
	"github.com/rileyhilliard/gatewatch/internal/errors"
	"github.com/rileyhilliard/gatewatch/internal/logger"
	"github.com/rileyhilliard/gatewatch/internal/sampler"
	"github.com/rileyhilliard/gatewatch/internal/wire"
)

// Period is the fixed sampling interval.
const Period = time.Second

// DefaultSendTimeout bounds a single send to a single observer.
const DefaultSendTimeout = 2 * time.Second

// Sampler produces the three payloads. *sampler.Sampler implements it.
type Sampler interface {
	Static(ctx context.Context) (sampler.StaticFacts, error)
	Dynamic(ctx context.Context) (sampler.DynamicFacts, error)
	Analog() sampler.AnalogReadings
}

// Stats counts scheduler activity since creation.
type Stats struct {
	Ticks          uint64
	Publishes      uint64
	SendFailures   uint64
	SampleFailures uint64
}

// Scheduler arms and disarms the sampling ticker and publishes samples.
type Scheduler struct {
	reg         *Registry
	sampler     Sampler
	clock       clock.Clock
	log         logger.Logger
	sendTimeout time.Duration

	mu      sync.Mutex
	ticker  *clock.Ticker
	stop    chan struct{}
	session uint64
	closed  bool
	loops   sync.WaitGroup

	// Static facts are computed once per session and reused for every
	// observer that joins during it.
	staticMu      sync.Mutex
	static        *sampler.StaticFacts
	staticSession uint64

	inflight sync.WaitGroup

	ticks          atomic.Uint64
	publishes      atomic.Uint64
	sendFailures   atomic.Uint64
	sampleFailures atomic.Uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock that drives the ticker.
func WithClock(c clock.Clock) Option { return func(s *Scheduler) { s.clock = c } }

// WithLogger sets the logger for sample and send failures.
func WithLogger(l logger.Logger) Option { return func(s *Scheduler) { s.log = l } }

// WithSendTimeout bounds each per-observer send.
func WithSendTimeout(d time.Duration) Option { return func(s *Scheduler) { s.sendTimeout = d } }

// NewScheduler creates a Scheduler and attaches it to reg.
func NewScheduler(reg *Registry, smp Sampler, opts ...Option) *Scheduler {
	s := &Scheduler{
		reg:         reg,
		sampler:     smp,
		clock:       clock.Real(),
		log:         logger.Noop(),
		sendTimeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	reg.setListener(s)
	return s
}

// Active reports whether the ticker is armed.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker != nil
}

// Stats returns a snapshot of the activity counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Ticks:          s.ticks.Load(),
		Publishes:      s.publishes.Load(),
		SendFailures:   s.sendFailures.Load(),
		SampleFailures: s.sampleFailures.Load(),
	}
}

// Started arms the ticker. Arming an armed scheduler is a no-op.
func (s *Scheduler) Started() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.ticker != nil {
		return
	}
	s.session++
	s.ticker = s.clock.NewTicker(Period)
	s.stop = make(chan struct{})
	s.loops.Add(1)
	go s.loop(s.ticker, s.stop)
	s.log.Debug("sampling started (session %d)", s.session)
}

// Stopped disarms the ticker. In-flight ticks finish on their own.
func (s *Scheduler) Stopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked()
}

func (s *Scheduler) disarmLocked() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.ticker, s.stop = nil, nil

	st := s.Stats()
	s.log.Debug("sampling stopped: %d ticks, %d publishes, %d send failures, %d sample failures",
		st.Ticks, st.Publishes, st.SendFailures, st.SampleFailures)
}

// Joined sends the session's static facts to o alone.
func (s *Scheduler) Joined(o Observer) {
	facts, ok := s.sessionStatic()
	if !ok {
		return
	}
	s.publishTo([]Observer{o}, wire.Envelope{Type: wire.KindStaticFacts, Data: facts})
}

func (s *Scheduler) sessionStatic() (sampler.StaticFacts, bool) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	s.staticMu.Lock()
	defer s.staticMu.Unlock()

	if s.static != nil && s.staticSession == session {
		return *s.static, true
	}

	facts, err := s.sampler.Static(context.Background())
	if err != nil {
		s.sampleFailures.Add(1)
		s.log.Warn("static facts: %s", errors.Line(err))
		return sampler.StaticFacts{}, false
	}
	s.static = &facts
	s.staticSession = session
	return facts, true
}

// Close disarms the ticker and waits for in-flight ticks to finish.
// Later connects no longer arm it.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.disarmLocked()
	s.mu.Unlock()

	s.loops.Wait()
	s.inflight.Wait()
}

func (s *Scheduler) loop(t *clock.Ticker, stop chan struct{}) {
	defer s.loops.Done()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			select {
			case <-stop:
				return
			default:
			}
			s.tick()
		}
	}
}

// tick samples in the background so a slow provider never delays the
// next tick.
func (s *Scheduler) tick() {
	s.ticks.Add(1)
	s.inflight.Add(2)

	go func() {
		defer s.inflight.Done()
		facts, err := s.sampler.Dynamic(context.Background())
		if err != nil {
			s.sampleFailures.Add(1)
			s.log.Warn("dynamic facts: %s", errors.Line(err))
			return
		}
		s.publish(wire.Envelope{Type: wire.KindDynamicFacts, Data: facts})
	}()

	go func() {
		defer s.inflight.Done()
		s.publish(wire.Envelope{Type: wire.KindAnalogReadings, Data: s.sampler.Analog()})
	}()
}

// publish sends env to every observer connected right now.
func (s *Scheduler) publish(env wire.Envelope) {
	s.publishTo(s.reg.Snapshot(), env)
}

func (s *Scheduler) publishTo(observers []Observer, env wire.Envelope) {
	if len(observers) == 0 {
		return
	}
	s.publishes.Add(1)

	var wg sync.WaitGroup
	for _, o := range observers {
		wg.Add(1)
		go func(o Observer) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
			defer cancel()
			if err := o.Send(ctx, env); err != nil {
				s.sendFailures.Add(1)
				s.log.Warn("send %s to %s (%s): %s", env.Type, o.ID(), o.RemoteAddr(), errors.Line(err))
			}
		}(o)
	}
	wg.Wait()
}

var _ Listener = (*Scheduler)(nil)
