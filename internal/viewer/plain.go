package viewer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rileyhilliard/gatewatch/internal/sampler"
	"github.com/rileyhilliard/gatewatch/internal/wire"
)

// RunPlain prints one line per message to w until src fails. It is used
// when stdout is not a terminal.
func RunPlain(src Source, w io.Writer) error {
	for {
		msg, err := src.Next()
		if err != nil {
			return err
		}
		if line := FormatLine(msg); line != "" {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
}

// FormatLine renders msg as a single key=value line.
func FormatLine(msg wire.Message) string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+quote(v))
		}
	}

	switch msg.Kind {
	case wire.KindStaticFacts:
		if s := msg.Static; s != nil {
			if o := s.OSInfo; o != nil {
				add("distro", o.Distro)
				add("kernel", o.Kernel)
				add("arch", o.Arch)
				add("serial", o.Serial)
			}
			if n := s.Network; n != nil {
				add("ip4", n.IP4)
				add("gateway", n.Gateway)
				add("type", n.Type)
				add("iface", n.Iface)
			}
		}
	case wire.KindDynamicFacts:
		if d := msg.Dynamic; d != nil {
			dynamicParts(d, add)
		}
	case wire.KindAnalogReadings:
		keys := make([]string, 0, len(msg.Analog))
		for k := range msg.Analog {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(k, msg.Analog[k])
		}
	default:
		return ""
	}
	return string(msg.Kind) + " " + strings.Join(parts, " ")
}

func dynamicParts(d *sampler.DynamicFacts, add func(k, v string)) {
	if t := d.Time; t != nil {
		add("time", t.CurrentTime)
		add("uptime", t.Uptime)
		add("tz", t.Timezone)
	}
	if c := d.CPU; c != nil {
		add("cpu", c.CurrentLoad)
		add("cpu_user", c.CurrentLoadUser)
		add("cpu_system", c.CurrentLoadSystem)
	}
	if r := d.MemoryRAM; r != nil {
		add("ram_total", r.Total)
		add("ram_active", r.Active)
		add("ram_used", r.Used)
		add("ram_active_pct", r.ActivePercent)
	}
	if dk := d.MemoryDisk; dk != nil {
		add("disk_total", dk.Total)
		add("disk_used", dk.Used)
		add("disk_used_pct", dk.UsedPercent)
	}
}

func quote(v string) string {
	if strings.ContainsAny(v, " \t\"") {
		return fmt.Sprintf("%q", v)
	}
	return v
}
