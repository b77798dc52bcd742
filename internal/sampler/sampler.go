// Package sampler turns raw host facts and sensor readings into the three
// broadcast payloads.
//
// format.go holds the pure transforms. Sampler gathers raw input from a
// facts.Provider and a sensor.Reader, issuing provider calls concurrently
// with a per-call timeout so one slow call bounds the whole sample.
package sampler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/gatewatch/internal/clock"
	"github.com/rileyhilliard/gatewatch/internal/errors"
	"github.com/rileyhilliard/gatewatch/internal/facts"
	"github.com/rileyhilliard/gatewatch/internal/logger"
	"github.com/rileyhilliard/gatewatch/internal/sensor"
)

// Defaults used when no option overrides them.
const (
	DefaultTimeout          = 800 * time.Millisecond
	DefaultReferenceVoltage = 1.8
)

// Sampler produces StaticFacts, DynamicFacts and AnalogReadings.
type Sampler struct {
	provider   facts.Provider
	reader     sensor.Reader
	clock      clock.Clock
	log        logger.Logger
	timeout    time.Duration
	refVoltage float64
	channels   []string
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithClock sets the clock used for the current-time field.
func WithClock(c clock.Clock) Option { return func(s *Sampler) { s.clock = c } }

// WithLogger sets the logger for provider failures.
func WithLogger(l logger.Logger) Option { return func(s *Sampler) { s.log = l } }

// WithTimeout bounds each individual provider call.
func WithTimeout(d time.Duration) Option { return func(s *Sampler) { s.timeout = d } }

// WithReferenceVoltage sets the ADC reference used to convert readings.
func WithReferenceVoltage(v float64) Option { return func(s *Sampler) { s.refVoltage = v } }

// WithChannels overrides the sampled analog channels.
func WithChannels(ids []string) Option {
	return func(s *Sampler) { s.channels = append([]string(nil), ids...) }
}

// New creates a Sampler reading from p and r.
func New(p facts.Provider, r sensor.Reader, opts ...Option) *Sampler {
	s := &Sampler{
		provider:   p,
		reader:     r,
		clock:      clock.Real(),
		log:        logger.Noop(),
		timeout:    DefaultTimeout,
		refVoltage: DefaultReferenceVoltage,
		channels:   sensor.Channels,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Static gathers OS info, interfaces and the default gateway concurrently.
// A failed call leaves its part out. It errors only when neither OS info
// nor interfaces could be read.
func (s *Sampler) Static(ctx context.Context) (StaticFacts, error) {
	var (
		wg      sync.WaitGroup
		raw     RawStatic
		osErr   error
		ifErr   error
		osInfo  facts.OSInfo
		ifaces  []facts.NetworkInterface
		gateway string
		gwErr   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		osInfo, osErr = bounded(ctx, s.timeout, s.provider.OSInfo)
	}()
	go func() {
		defer wg.Done()
		ifaces, ifErr = bounded(ctx, s.timeout, s.provider.NetworkInterfaces)
	}()
	go func() {
		defer wg.Done()
		gateway, gwErr = bounded(ctx, s.timeout, s.provider.DefaultGateway)
	}()
	wg.Wait()

	if osErr == nil {
		raw.OS = &osInfo
	} else {
		s.log.Warn("os info: %v", osErr)
	}
	if ifErr == nil {
		raw.Interfaces = ifaces
	} else {
		s.log.Warn("network interfaces: %v", ifErr)
	}
	if gwErr == nil {
		raw.Gateway = gateway
	} else {
		s.log.Debug("default gateway: %v", gwErr)
	}

	if osErr != nil && ifErr != nil {
		return StaticFacts{}, errors.WrapWithCode(
			fmt.Errorf("os info: %w; network interfaces: %v", osErr, ifErr),
			errors.ErrProvider,
			"Couldn't read static host facts",
			"Check that /etc/os-release and /sys/class/net are readable")
	}
	return BuildStatic(raw), nil
}

// Dynamic gathers time, CPU, memory and disk concurrently. Each failed call
// drops its section. It errors only when every call failed.
func (s *Sampler) Dynamic(ctx context.Context) (DynamicFacts, error) {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		raw    = RawDynamic{Now: s.clock.Now()}
		failed int
	)

	fail := func(what string, err error) {
		mu.Lock()
		failed++
		mu.Unlock()
		s.log.Warn("%s: %v", what, err)
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		ti, err := bounded(ctx, s.timeout, s.provider.Time)
		if err != nil {
			fail("time", err)
			return
		}
		raw.Time = &ti
	}()
	go func() {
		defer wg.Done()
		load, err := bounded(ctx, s.timeout, s.provider.CPULoad)
		if err != nil {
			fail("cpu load", err)
			return
		}
		raw.CPU = &load
	}()
	go func() {
		defer wg.Done()
		m, err := bounded(ctx, s.timeout, s.provider.Memory)
		if err != nil {
			fail("memory", err)
			return
		}
		raw.Memory = &m
	}()
	go func() {
		defer wg.Done()
		disks, err := bounded(ctx, s.timeout, s.provider.DiskUsage)
		if err == nil && len(disks) == 0 {
			err = fmt.Errorf("no mounts reported")
		}
		if err != nil {
			fail("disk usage", err)
			return
		}
		raw.Disks = disks
	}()
	wg.Wait()

	if failed == 4 {
		return DynamicFacts{}, errors.New(errors.ErrProvider,
			"Every dynamic host fact failed this tick",
			"Check the warnings above for the individual causes")
	}
	return BuildDynamic(raw), nil
}

// Analog reads every configured channel. It never fails.
func (s *Sampler) Analog() AnalogReadings {
	readings := make(map[string]float64, len(s.channels))
	for _, ch := range s.channels {
		readings[ch] = s.reader.ReadChannel(ch)
	}
	return BuildAnalog(readings, s.refVoltage)
}

// bounded runs fn with a deadline and returns as soon as the deadline
// passes, even if fn ignores its context.
func bounded[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
