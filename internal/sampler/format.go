package sampler

import (
	"fmt"
	"math"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rileyhilliard/gatewatch/internal/facts"
)

// NA replaces any value that cannot be computed.
const NA = "N/A"

// ClockLayout renders the wall clock as a fixed 24-character string.
const ClockLayout = "Mon Jan 02 2006 15:04:05"

const bytesPerMegabyte = 1024 * 1024

// RawStatic is the provider output BuildStatic works from. A nil OS means
// the OS info call failed.
type RawStatic struct {
	OS         *facts.OSInfo
	Interfaces []facts.NetworkInterface
	Gateway    string
}

// RawDynamic is the provider output BuildDynamic works from. Nil pointers
// and an empty Disks slice mean the matching call failed.
type RawDynamic struct {
	Now    time.Time
	Time   *facts.TimeInfo
	CPU    *facts.CPULoad
	Memory *facts.Memory
	Disks  []facts.DiskUsage
}

// BuildStatic assembles the static payload. Network is only present when a
// wireless interface exists.
func BuildStatic(raw RawStatic) StaticFacts {
	var out StaticFacts
	if raw.OS != nil {
		out.OSInfo = &OSInfo{
			Distro: FormatDistro(raw.OS.Distro, raw.OS.Release, raw.OS.Codename),
			Kernel: raw.OS.Kernel,
			Arch:   raw.OS.Arch,
			Serial: raw.OS.Serial,
		}
	}
	for _, iface := range raw.Interfaces {
		if iface.Type != facts.InterfaceWireless {
			continue
		}
		out.Network = &Network{
			IP4:     iface.IP4,
			Gateway: raw.Gateway,
			Type:    iface.Type,
			Iface:   iface.Iface,
		}
		break
	}
	return out
}

// BuildDynamic assembles the dynamic payload from whichever calls
// succeeded. The current time section is always present.
func BuildDynamic(raw RawDynamic) DynamicFacts {
	out := DynamicFacts{
		Time: &TimeFacts{CurrentTime: FormatClock(raw.Now)},
	}
	if raw.Time != nil {
		out.Time.Uptime = FormatUptime(raw.Time.UptimeSeconds)
		out.Time.Timezone = raw.Time.Timezone
	}
	if raw.CPU != nil {
		out.CPU = &CPUFacts{
			CurrentLoad:       FormatLoad(raw.CPU.Total),
			CurrentLoadUser:   FormatLoad(raw.CPU.User),
			CurrentLoadSystem: FormatLoad(raw.CPU.System),
		}
	}
	if raw.Memory != nil {
		m := FormatMemory(*raw.Memory)
		out.MemoryRAM = &m
	}
	if len(raw.Disks) > 0 {
		d := FormatDisk(raw.Disks[0])
		out.MemoryDisk = &d
	}
	return out
}

// BuildAnalog formats every reading against the reference voltage.
func BuildAnalog(readings map[string]float64, refVoltage float64) AnalogReadings {
	out := make(AnalogReadings, len(readings))
	for ch, v := range readings {
		out[ch] = FormatAnalog(v, refVoltage)
	}
	return out
}

// FormatDistro renders "<first 6 chars of distro> <release> - <Codename>".
// The codename suffix is dropped when the codename is unknown.
func FormatDistro(distro, release, codename string) string {
	label := truncateRunes(distro, 6)
	if release != "" {
		label += " " + release
	}
	if codename != "" {
		label += " - " + capitalize(codename)
	}
	return label
}

// FormatMemory converts RAM figures to megabytes.
func FormatMemory(m facts.Memory) MemoryRAM {
	return MemoryRAM{
		Total:         FormatMegabytes(m.Total),
		Active:        FormatMegabytes(m.Active),
		Used:          FormatMegabytes(m.Used),
		ActivePercent: FormatPercent(float64(m.Active), float64(m.Total)),
	}
}

// FormatDisk converts disk usage to megabytes.
func FormatDisk(d facts.DiskUsage) MemoryDisk {
	return MemoryDisk{
		Total:       FormatMegabytes(d.Size),
		Used:        FormatMegabytes(d.Used),
		UsedPercent: FormatPercent(float64(d.Used), float64(d.Size)),
	}
}

// FormatMegabytes renders bytes as megabytes with one decimal.
func FormatMegabytes(bytes uint64) string {
	return fmt.Sprintf("%.1f", float64(bytes)/bytesPerMegabyte)
}

// FormatPercent renders 100*part/whole with one decimal and a "%" suffix.
func FormatPercent(part, whole float64) string {
	if whole == 0 || !finite(part) || !finite(whole) {
		return NA
	}
	return FormatLoad(100 * part / whole)
}

// FormatLoad renders a percentage with one decimal and a "%" suffix.
func FormatLoad(pct float64) string {
	if !finite(pct) {
		return NA
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatUptime renders seconds as HH:MM:SS. Hours wrap at 24.
func FormatUptime(seconds float64) string {
	if !finite(seconds) || seconds < 0 {
		return NA
	}
	s := int64(seconds) % 86400
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

// FormatClock renders t using ClockLayout.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return NA
	}
	return t.Format(ClockLayout)
}

// FormatAnalog renders a ratiometric reading as "<pct>% <volts>V".
// Readings outside [0,1] are clamped.
func FormatAnalog(reading, refVoltage float64) string {
	if !finite(reading) || !finite(refVoltage) {
		return NA
	}
	reading = math.Max(0, math.Min(1, reading))
	return fmt.Sprintf("%.1f%% %.3fV", reading*100, reading*refVoltage)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
