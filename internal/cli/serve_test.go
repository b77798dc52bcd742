package cli

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/gatewatch/internal/config"
	"github.com/rileyhilliard/gatewatch/internal/facts"
	"github.com/rileyhilliard/gatewatch/internal/logger"
	"github.com/rileyhilliard/gatewatch/internal/sensor"
	"github.com/rileyhilliard/gatewatch/internal/viewer"
	"github.com/rileyhilliard/gatewatch/internal/wire"
)

func TestApplyServeFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "serve"}
	cmd.Flags().StringVar(&serveListenFlag, "listen", "", "")
	cmd.Flags().BoolVar(&serveSimulateFlag, "simulate", false, "")
	cmd.Flags().StringSliceVar(&serveMountsFlag, "mount", nil, "")
	require.NoError(t, cmd.ParseFlags([]string{"--listen", ":7000", "--mount", "/", "--mount", "/data"}))

	cfg := config.DefaultConfig()
	cfg.Simulate = true
	applyServeFlags(cmd, cfg)

	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, []string{"/", "/data"}, cfg.Mounts)
	assert.True(t, cfg.Simulate, "unset flag leaves config alone")
}

func TestSubprotocolFor(t *testing.T) {
	assert.Equal(t, wire.SubprotocolCBOR, subprotocolFor("cbor"))
	assert.Equal(t, wire.SubprotocolJSON, subprotocolFor("json"))
	assert.Equal(t, wire.SubprotocolJSON, subprotocolFor(""))
}

func TestSensorReader(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Simulate = true
	log := logger.NewBufferLogger()
	_, ok := sensorReader(cfg, log).(*sensor.Static)
	assert.True(t, ok)

	cfg.Simulate = false
	cfg.Analog.Device = t.TempDir() + "/missing"
	_, ok = sensorReader(cfg, log).(*sensor.IIO)
	assert.True(t, ok)
	assert.True(t, log.HasLevel("warn"))
}

func TestDaemon_EndToEnd(t *testing.T) {
	cfg := config.DefaultConfig()
	provider := &facts.Fake{
		OS: facts.OSInfo{Distro: "Debian GNU/Linux", Release: "10", Codename: "buster", Kernel: "4.19.94", Arch: "armv7l"},
		Interfaces: []facts.NetworkInterface{
			{Type: facts.InterfaceWireless, Iface: "wlan0", IP4: "192.168.1.40"},
		},
		Gateway: "192.168.1.1",
		Mem:     facts.Memory{Total: 1 << 30, Active: 1 << 29},
		Disks:   []facts.DiskUsage{{Mount: "/", Size: 1 << 30, Used: 1 << 28}},
	}
	d := newDaemon(cfg, provider, sensor.Simulated(), logger.Noop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.serve(ctx, ln) }()
	defer func() {
		cancel()
		<-done
	}()

	client, err := viewer.Dial(ctx, "ws://"+ln.Addr().String()+"/", wire.SubprotocolCBOR)
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, wire.SubprotocolCBOR, client.Codec().Subprotocol())

	var lines []string
	for len(lines) < 3 {
		msg, err := client.Next()
		require.NoError(t, err)
		lines = append(lines, viewer.FormatLine(msg))
	}
	joined := strings.Join(lines, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "staticFacts "))
	assert.Contains(t, joined, `distro="Debian 10 - Buster"`)
	assert.Contains(t, joined, "gateway=192.168.1.1")
	assert.Contains(t, joined, `A3="20.0% 0.360V"`)
	assert.Contains(t, joined, "dynamicFacts ")

	assert.Eventually(t, func() bool { return d.sched.Active() }, time.Second, 10*time.Millisecond)
}

func TestRunServe_LogsListenAddressOnce(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Listen = "127.0.0.1:0"
	cfg.Simulate = true
	log := logger.NewBufferLogger()

	listening := func() int {
		n := 0
		for _, e := range log.Entries() {
			if strings.HasPrefix(e.Message, "listening on ") {
				n++
			}
		}
		return n
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg, log) }()

	require.Eventually(t, func() bool { return listening() > 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runServe did not return after cancel")
	}
	assert.Equal(t, 1, listening())
}
