package sampler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/gatewatch/internal/clock"
	gwerrors "github.com/rileyhilliard/gatewatch/internal/errors"
	"github.com/rileyhilliard/gatewatch/internal/facts"
	"github.com/rileyhilliard/gatewatch/internal/logger"
	"github.com/rileyhilliard/gatewatch/internal/sensor"
)

var errBoom = errors.New("boom")

func healthyProvider() *facts.Fake {
	return &facts.Fake{
		OS: facts.OSInfo{Distro: "Debian GNU/Linux", Release: "10", Codename: "buster", Kernel: "5.10", Arch: "arm"},
		Interfaces: []facts.NetworkInterface{
			{Type: facts.InterfaceWireless, Iface: "wlan0", IP4: "192.168.1.40"},
		},
		Gateway:  "192.168.1.1",
		TimeInfo: facts.TimeInfo{UptimeSeconds: 3661, Timezone: "GMT+0000"},
		Load:     facts.CPULoad{Total: 25, User: 20, System: 5},
		Mem:      facts.Memory{Total: 2147483648, Active: 1073741824, Used: 1073741824},
		Disks:    []facts.DiskUsage{{Mount: "/", Size: 1 << 30, Used: 1 << 29}},
	}
}

func newSampler(p facts.Provider, opts ...Option) *Sampler {
	base := []Option{
		WithClock(clock.Fake(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))),
		WithTimeout(200 * time.Millisecond),
	}
	return New(p, sensor.NewStatic(map[string]float64{"A3": 0.5, "A4": 0, "A5": 1, "A6": 0.25}), append(base, opts...)...)
}

func TestSampler_Static(t *testing.T) {
	s := newSampler(healthyProvider())

	got, err := s.Static(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got.OSInfo)
	assert.Equal(t, "Debian 10 - Buster", got.OSInfo.Distro)
	require.NotNil(t, got.Network)
	assert.Equal(t, "192.168.1.1", got.Network.Gateway)
}

func TestSampler_StaticBothCausesReported(t *testing.T) {
	p := healthyProvider()
	p.Errs = map[string]error{
		facts.MethodOSInfo:            errors.New("os-release missing"),
		facts.MethodNetworkInterfaces: errors.New("netlink refused"),
	}
	s := newSampler(p)

	_, err := s.Static(context.Background())
	require.Error(t, err)

	var structured *gwerrors.Error
	require.ErrorAs(t, err, &structured)
	require.Error(t, structured.Cause)
	assert.Contains(t, structured.Cause.Error(), "os-release missing")
	assert.Contains(t, structured.Cause.Error(), "netlink refused")
	assert.NotContains(t, structured.Suggestion, "netlink refused")

	line := gwerrors.Line(err)
	assert.NotContains(t, line, "\n")
	assert.Contains(t, line, "os info: os-release missing; network interfaces: netlink refused")
}

func TestSampler_StaticPartialFailures(t *testing.T) {
	tests := []struct {
		name        string
		errs        map[string]error
		wantErr     bool
		wantOS      bool
		wantNetwork bool
		wantGateway string
	}{
		{
			name:        "gateway fails",
			errs:        map[string]error{facts.MethodDefaultGateway: errBoom},
			wantOS:      true,
			wantNetwork: true,
		},
		{
			name:        "os info fails",
			errs:        map[string]error{facts.MethodOSInfo: errBoom},
			wantNetwork: true,
			wantGateway: "192.168.1.1",
		},
		{
			name:   "interfaces fail",
			errs:   map[string]error{facts.MethodNetworkInterfaces: errBoom},
			wantOS: true,
		},
		{
			name: "os info and interfaces fail",
			errs: map[string]error{
				facts.MethodOSInfo:            errBoom,
				facts.MethodNetworkInterfaces: errBoom,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := healthyProvider()
			p.Errs = tt.errs
			log := logger.NewBufferLogger()
			s := newSampler(p, WithLogger(log))

			got, err := s.Static(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, gwerrors.IsCode(err, gwerrors.ErrProvider))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOS, got.OSInfo != nil)
			assert.Equal(t, tt.wantNetwork, got.Network != nil)
			if got.Network != nil {
				assert.Equal(t, tt.wantGateway, got.Network.Gateway)
			}
		})
	}
}

func TestSampler_Dynamic(t *testing.T) {
	s := newSampler(healthyProvider())

	got, err := s.Dynamic(context.Background())
	require.NoError(t, err)

	require.NotNil(t, got.Time)
	assert.Equal(t, "Thu Jan 01 2026 12:00:00", got.Time.CurrentTime)
	assert.Equal(t, "01:01:01", got.Time.Uptime)
	assert.Equal(t, "GMT+0000", got.Time.Timezone)
	require.NotNil(t, got.CPU)
	assert.Equal(t, "25.0%", got.CPU.CurrentLoad)
	require.NotNil(t, got.MemoryRAM)
	assert.Equal(t, "2048.0", got.MemoryRAM.Total)
	assert.Equal(t, "50.0%", got.MemoryRAM.ActivePercent)
	require.NotNil(t, got.MemoryDisk)
	assert.Equal(t, "50.0%", got.MemoryDisk.UsedPercent)
}

func TestSampler_DynamicOneCategoryFails(t *testing.T) {
	p := healthyProvider()
	p.Errs = map[string]error{facts.MethodCPULoad: errBoom}
	log := logger.NewBufferLogger()
	s := newSampler(p, WithLogger(log))

	got, err := s.Dynamic(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got.CPU)
	assert.NotNil(t, got.MemoryRAM)
	assert.NotNil(t, got.MemoryDisk)
	assert.NotEmpty(t, got.Time.Uptime)
	assert.True(t, log.HasLevel("warn"))

	// Analog readings are independent of the provider entirely.
	assert.Len(t, s.Analog(), 4)
}

func TestSampler_DynamicAllFail(t *testing.T) {
	p := healthyProvider()
	p.Errs = map[string]error{
		facts.MethodTime:      errBoom,
		facts.MethodCPULoad:   errBoom,
		facts.MethodMemory:    errBoom,
		facts.MethodDiskUsage: errBoom,
	}
	s := newSampler(p)

	_, err := s.Dynamic(context.Background())
	require.Error(t, err)
	assert.True(t, gwerrors.IsCode(err, gwerrors.ErrProvider))
}

func TestSampler_EmptyDiskListOmitsSection(t *testing.T) {
	p := healthyProvider()
	p.Disks = nil
	s := newSampler(p)

	got, err := s.Dynamic(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got.MemoryDisk)
}

func TestSampler_CallsRunConcurrently(t *testing.T) {
	p := healthyProvider()
	p.Delay = 100 * time.Millisecond
	s := newSampler(p, WithTimeout(time.Second))

	start := time.Now()
	_, err := s.Dynamic(context.Background())
	require.NoError(t, err)
	elapsed := time.Since(start)

	// Four 100ms calls run side by side, not back to back.
	assert.Less(t, elapsed, 350*time.Millisecond)
}

func TestSampler_TimeoutBoundsSlowCall(t *testing.T) {
	p := healthyProvider()
	p.Delay = time.Hour
	s := newSampler(p, WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := s.Dynamic(context.Background())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBounded_IgnoresUncooperativeCall(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	_, err := bounded(context.Background(), 10*time.Millisecond, func(context.Context) (int, error) {
		<-block
		return 1, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSampler_Analog(t *testing.T) {
	s := newSampler(healthyProvider())

	got := s.Analog()
	assert.Equal(t, AnalogReadings{
		"A3": "50.0% 0.900V",
		"A4": "0.0% 0.000V",
		"A5": "100.0% 1.800V",
		"A6": "25.0% 0.450V",
	}, got)
}

func TestSampler_AnalogMissingHardware(t *testing.T) {
	s := New(healthyProvider(), sensor.NewStatic(nil), WithChannels([]string{"A3"}), WithReferenceVoltage(3.3))
	assert.Equal(t, AnalogReadings{"A3": NA}, s.Analog())
}
