package facts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/rileyhilliard/gatewatch/internal/clock"
)

// Default file locations read by Host. Overridable in tests.
const (
	defaultOSRelease = "/etc/os-release"
	defaultRouteFile = "/proc/net/route"
	defaultSysNet    = "/sys/class/net"
)

// Host reads facts from the local machine using gopsutil.
type Host struct {
	mounts []string
	clock  clock.Clock

	osRelease string
	routeFile string
	sysNet    string

	// Previous CPU counters for delta-based load.
	mu       sync.Mutex
	prevCPU  cpu.TimesStat
	havePrev bool
}

// NewHost creates a Host that reports disk usage for the given mount
// points. Only the first mount that can be read is used by the sampler,
// but all are returned.
func NewHost(mounts []string, clk clock.Clock) *Host {
	if len(mounts) == 0 {
		mounts = []string{"/"}
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Host{
		mounts:    mounts,
		clock:     clk,
		osRelease: defaultOSRelease,
		routeFile: defaultRouteFile,
		sysNet:    defaultSysNet,
	}
}

// OSInfo returns distribution, kernel and hardware identity.
func (h *Host) OSInfo(ctx context.Context) (OSInfo, error) {
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return OSInfo{}, fmt.Errorf("host info: %w", err)
	}

	info := OSInfo{
		Distro:  hi.Platform,
		Release: hi.PlatformVersion,
		Kernel:  hi.KernelVersion,
		Arch:    hi.KernelArch,
	}

	// os-release carries the human name and codename that gopsutil drops.
	if rel, err := readOSRelease(h.osRelease); err == nil {
		if v := rel["NAME"]; v != "" {
			info.Distro = v
		}
		if v := rel["VERSION_ID"]; v != "" {
			info.Release = v
		}
		info.Codename = rel["VERSION_CODENAME"]
	}

	info.Serial = hardwareSerial()
	if info.Serial == "" {
		info.Serial = hi.HostID
	}

	return info, ctx.Err()
}

// NetworkInterfaces lists interfaces with their type and first IPv4 address.
func (h *Host) NetworkInterfaces(ctx context.Context) ([]NetworkInterface, error) {
	stats, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	out := make([]NetworkInterface, 0, len(stats))
	for _, st := range stats {
		out = append(out, NetworkInterface{
			Type:  h.interfaceType(st.Name, st.Flags),
			Iface: st.Name,
			IP4:   firstIPv4(st.Addrs),
		})
	}
	return out, nil
}

func (h *Host) interfaceType(name string, flags []string) string {
	for _, f := range flags {
		if f == "loopback" {
			return InterfaceVirtual
		}
	}
	if exists(filepath.Join(h.sysNet, name, "wireless")) || exists(filepath.Join(h.sysNet, name, "phy80211")) {
		return InterfaceWireless
	}
	// Physical NICs have a device link; bridges, veths and tunnels do not.
	if exists(filepath.Join(h.sysNet, name)) && !exists(filepath.Join(h.sysNet, name, "device")) {
		return InterfaceVirtual
	}
	return InterfaceWired
}

// DefaultGateway returns the IPv4 address of the default route.
func (h *Host) DefaultGateway(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(h.routeFile)
	if err != nil {
		return "", fmt.Errorf("default gateway: %w", ErrUnsupported)
	}
	defer f.Close()

	gw, err := parseRouteTable(f)
	if err != nil {
		return "", fmt.Errorf("default gateway: %w", err)
	}
	return gw, nil
}

// Time returns uptime and the local timezone offset as "GMT+hhmm".
func (h *Host) Time(ctx context.Context) (TimeInfo, error) {
	up, err := host.UptimeWithContext(ctx)
	if err != nil {
		return TimeInfo{}, fmt.Errorf("uptime: %w", err)
	}
	return TimeInfo{
		UptimeSeconds: float64(up),
		Timezone:      h.clock.Now().Format("GMT-0700"),
	}, nil
}

// CPULoad returns utilisation since the previous call. The first call
// reports the average since boot.
func (h *Host) CPULoad(ctx context.Context) (CPULoad, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return CPULoad{}, fmt.Errorf("cpu times: %w", err)
	}
	if len(times) == 0 {
		return CPULoad{}, fmt.Errorf("cpu times: no data available")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var prev cpu.TimesStat
	if h.havePrev {
		prev = h.prevCPU
	}
	h.prevCPU = times[0]
	h.havePrev = true

	return loadBetween(prev, times[0]), nil
}

// loadBetween computes utilisation percentages between two cumulative
// counter samples.
func loadBetween(prev, cur cpu.TimesStat) CPULoad {
	total := cpuTotal(cur) - cpuTotal(prev)
	if total <= 0 {
		return CPULoad{}
	}

	user := (cur.User + cur.Nice) - (prev.User + prev.Nice)
	system := (cur.System + cur.Irq + cur.Softirq) - (prev.System + prev.Irq + prev.Softirq)
	idle := (cur.Idle + cur.Iowait) - (prev.Idle + prev.Iowait)

	return CPULoad{
		Total:  clampPercent((total - idle) / total * 100),
		User:   clampPercent(user / total * 100),
		System: clampPercent(system / total * 100),
	}
}

func cpuTotal(t cpu.TimesStat) float64 {
	return t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// Memory returns total, active and used RAM.
func (h *Host) Memory(ctx context.Context) (Memory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Memory{}, fmt.Errorf("virtual memory: %w", err)
	}
	return Memory{Total: vm.Total, Active: vm.Active, Used: vm.Used}, nil
}

// DiskUsage returns usage for every configured mount that could be read.
// It fails only when none could.
func (h *Host) DiskUsage(ctx context.Context) ([]DiskUsage, error) {
	var out []DiskUsage
	var lastErr error
	for _, m := range h.mounts {
		u, err := disk.UsageWithContext(ctx, m)
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, DiskUsage{Mount: m, Size: u.Total, Used: u.Used})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("disk usage: %w", lastErr)
	}
	return out, nil
}

func firstIPv4(addrs psnet.InterfaceAddrList) string {
	for _, a := range addrs {
		ip := strings.SplitN(a.Addr, "/", 2)[0]
		if strings.Contains(ip, ".") && !strings.Contains(ip, ":") {
			return ip
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var _ Provider = (*Host)(nil)
