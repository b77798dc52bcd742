// Package facts supplies static and dynamic host facts to the sampler.
//
// Provider is the narrow interface the rest of gatewatch depends on. Every
// call takes a context, may block on I/O, and fails independently of the
// others. Host is the production implementation built on gopsutil.
package facts

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by calls that have no implementation on the
// current platform.
var ErrUnsupported = errors.New("not supported on this platform")

// OSInfo describes the operating system.
type OSInfo struct {
	Distro   string
	Release  string
	Codename string
	Kernel   string
	Arch     string
	Serial   string
}

// NetworkInterface is one network interface with its first IPv4 address.
type NetworkInterface struct {
	// Type is "wireless", "wired" or "virtual".
	Type  string
	Iface string
	IP4   string
}

// Interface types reported in NetworkInterface.Type.
const (
	InterfaceWireless = "wireless"
	InterfaceWired    = "wired"
	InterfaceVirtual  = "virtual"
)

// TimeInfo holds host clock facts.
type TimeInfo struct {
	UptimeSeconds float64
	Timezone      string
}

// CPULoad holds CPU utilisation percentages since the previous call.
type CPULoad struct {
	Total  float64
	User   float64
	System float64
}

// Memory holds RAM figures in bytes.
type Memory struct {
	Total  uint64
	Active uint64
	Used   uint64
}

// DiskUsage holds usage for one mount point in bytes.
type DiskUsage struct {
	Mount string
	Size  uint64
	Used  uint64
}

// Provider supplies host facts on demand.
type Provider interface {
	OSInfo(ctx context.Context) (OSInfo, error)
	NetworkInterfaces(ctx context.Context) ([]NetworkInterface, error)
	DefaultGateway(ctx context.Context) (string, error)
	Time(ctx context.Context) (TimeInfo, error)
	CPULoad(ctx context.Context) (CPULoad, error)
	Memory(ctx context.Context) (Memory, error)
	DiskUsage(ctx context.Context) ([]DiskUsage, error)
}
