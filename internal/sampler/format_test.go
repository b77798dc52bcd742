package sampler

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/gatewatch/internal/facts"
)

func TestFormatAnalog(t *testing.T) {
	tests := []struct {
		name    string
		reading float64
		ref     float64
		want    string
	}{
		{"half scale", 0.5, 1.8, "50.0% 0.900V"},
		{"zero", 0, 1.8, "0.0% 0.000V"},
		{"full scale", 1, 1.8, "100.0% 1.800V"},
		{"other reference", 0.25, 3.3, "25.0% 0.825V"},
		{"clamped high", 1.7, 1.8, "100.0% 1.800V"},
		{"clamped low", -0.2, 1.8, "0.0% 0.000V"},
		{"NaN reading", math.NaN(), 1.8, NA},
		{"infinite reading", math.Inf(1), 1.8, NA},
		{"NaN reference", 0.5, math.NaN(), NA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAnalog(tt.reading, tt.ref))
		})
	}
}

func TestFormatMemory(t *testing.T) {
	got := FormatMemory(facts.Memory{Total: 2147483648, Active: 1073741824, Used: 536870912})
	assert.Equal(t, "2048.0", got.Total)
	assert.Equal(t, "1024.0", got.Active)
	assert.Equal(t, "512.0", got.Used)
	assert.Equal(t, "50.0%", got.ActivePercent)

	zero := FormatMemory(facts.Memory{})
	assert.Equal(t, "0.0", zero.Total)
	assert.Equal(t, NA, zero.ActivePercent, "zero total has no percentage")
}

func TestFormatDisk(t *testing.T) {
	got := FormatDisk(facts.DiskUsage{Size: 4 * bytesPerMegabyte, Used: bytesPerMegabyte})
	assert.Equal(t, MemoryDisk{Total: "4.0", Used: "1.0", UsedPercent: "25.0%"}, got)
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		name        string
		part, whole float64
		want        string
	}{
		{"half", 1, 2, "50.0%"},
		{"rounds to one decimal", 1, 3, "33.3%"},
		{"zero whole", 1, 0, NA},
		{"NaN part", math.NaN(), 1, NA},
		{"infinite whole", 1, math.Inf(1), NA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPercent(tt.part, tt.whole))
		})
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{59.9, "00:00:59"},
		{3661, "01:01:01"},
		{86399, "23:59:59"},
		{86400 + 125, "00:02:05"},
		{-1, NA},
		{math.NaN(), NA},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.seconds), "seconds=%v", tt.seconds)
	}
}

func TestFormatClock(t *testing.T) {
	ts := time.Date(2026, 3, 7, 9, 4, 5, 0, time.UTC)
	got := FormatClock(ts)
	assert.Equal(t, "Sat Mar 07 2026 09:04:05", got)
	assert.Len(t, got, 24)
	assert.Equal(t, NA, FormatClock(time.Time{}))
}

func TestFormatDistro(t *testing.T) {
	tests := []struct {
		name                      string
		distro, release, codename string
		want                      string
	}{
		{"debian", "Debian GNU/Linux", "10.3", "buster", "Debian 10.3 - Buster"},
		{"short distro", "Arch", "rolling", "", "Arch rolling"},
		{"no release", "Ubuntu", "", "jammy", "Ubuntu - Jammy"},
		{"multibyte", "Ünïcødé Linux", "1", "x", "Ünïcød 1 - X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDistro(tt.distro, tt.release, tt.codename))
		})
	}
}

func TestBuildStatic(t *testing.T) {
	raw := RawStatic{
		OS: &facts.OSInfo{
			Distro: "Debian GNU/Linux", Release: "9.5", Codename: "stretch",
			Kernel: "4.14.71-ti-r80", Arch: "arm", Serial: "1234BBBK5678",
		},
		Interfaces: []facts.NetworkInterface{
			{Type: facts.InterfaceVirtual, Iface: "lo", IP4: "127.0.0.1"},
			{Type: facts.InterfaceWired, Iface: "eth0", IP4: "192.168.7.2"},
			{Type: facts.InterfaceWireless, Iface: "wlan0", IP4: "192.168.1.40"},
			{Type: facts.InterfaceWireless, Iface: "wlan1", IP4: "10.0.0.2"},
		},
		Gateway: "192.168.1.1",
	}

	got := BuildStatic(raw)
	require.NotNil(t, got.OSInfo)
	assert.Equal(t, "Debian 9.5 - Stretch", got.OSInfo.Distro)
	assert.Equal(t, "4.14.71-ti-r80", got.OSInfo.Kernel)
	require.NotNil(t, got.Network)
	assert.Equal(t, Network{IP4: "192.168.1.40", Gateway: "192.168.1.1", Type: "wireless", Iface: "wlan0"}, *got.Network)
}

func TestBuildStatic_NoWireless(t *testing.T) {
	got := BuildStatic(RawStatic{
		OS:         &facts.OSInfo{Distro: "Debian"},
		Interfaces: []facts.NetworkInterface{{Type: facts.InterfaceWired, Iface: "eth0"}},
	})
	assert.NotNil(t, got.OSInfo)
	assert.Nil(t, got.Network)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "network")
}

func TestBuildDynamic_PartialInput(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := BuildDynamic(RawDynamic{
		Now:    now,
		Memory: &facts.Memory{Total: 2147483648, Active: 1073741824},
	})

	require.NotNil(t, got.Time)
	assert.Equal(t, "Fri Jan 02 2026 03:04:05", got.Time.CurrentTime)
	assert.Empty(t, got.Time.Uptime)
	assert.Nil(t, got.CPU)
	assert.Nil(t, got.MemoryDisk)
	require.NotNil(t, got.MemoryRAM)
	assert.Equal(t, "50.0%", got.MemoryRAM.ActivePercent)
}

func TestBuildDynamic_FirstDiskOnly(t *testing.T) {
	got := BuildDynamic(RawDynamic{
		Now: time.Unix(0, 0).UTC(),
		Disks: []facts.DiskUsage{
			{Mount: "/", Size: 2 * bytesPerMegabyte, Used: bytesPerMegabyte},
			{Mount: "/data", Size: 8 * bytesPerMegabyte},
		},
	})
	require.NotNil(t, got.MemoryDisk)
	assert.Equal(t, "2.0", got.MemoryDisk.Total)
	assert.Equal(t, "50.0%", got.MemoryDisk.UsedPercent)
}

func TestBuildFunctions_Deterministic(t *testing.T) {
	now := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)
	raw := RawDynamic{
		Now:    now,
		Time:   &facts.TimeInfo{UptimeSeconds: 4000, Timezone: "GMT+0000"},
		CPU:    &facts.CPULoad{Total: 12.34, User: 10, System: 2.34},
		Memory: &facts.Memory{Total: 1 << 30, Active: 1 << 29, Used: 1 << 28},
		Disks:  []facts.DiskUsage{{Size: 1 << 33, Used: 1 << 32}},
	}
	first, err := json.Marshal(BuildDynamic(raw))
	require.NoError(t, err)
	second, err := json.Marshal(BuildDynamic(raw))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	readings := map[string]float64{"A3": 0.1, "A4": 0.2, "A5": math.NaN(), "A6": 2}
	a, err := json.Marshal(BuildAnalog(readings, 1.8))
	require.NoError(t, err)
	b, err := json.Marshal(BuildAnalog(readings, 1.8))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
