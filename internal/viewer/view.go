package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/gatewatch/internal/sampler"
	"github.com/rileyhilliard/gatewatch/internal/sensor"
)

const barWidth = 12

// row is one label/value line of a table.
type row struct {
	label string
	value string
	bar   bool
}

func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.state.Received == 0 {
		b.WriteString(fmt.Sprintf("  %s Waiting for data from %s...\n", m.spinner.View(), m.url))
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
		return b.String()
	}

	gateway := renderTable("Gateway Data", gatewayRows(m.state))
	osvars := renderTable("OS Variables", osRows(m.state.Dynamic))
	conn := renderTable("Connectivity", connectivityRows(m.state.Static))
	analog := renderTable("Analog Inputs", analogRows(m.state.Analog))

	if m.width > 0 && m.width < 80 {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, gateway, osvars, conn, analog))
	} else {
		top := lipgloss.JoinHorizontal(lipgloss.Top, gateway, osvars)
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, conn, analog)
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, top, bottom))
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render("gatewatch watch")
	info := LabelStyle.Render(fmt.Sprintf("%s (%s)", m.url, m.codec))
	return HeaderStyle.Render(title + "  " + info)
}

func (m Model) renderFooter() string {
	if m.state.LastUpdate.IsZero() {
		return FooterStyle.Render("q quit")
	}
	return FooterStyle.Render(fmt.Sprintf("q quit  •  last update %s", m.state.LastUpdate.Format("15:04:05")))
}

func renderTable(title string, rows []row) string {
	labelWidth := 0
	for _, r := range rows {
		if w := lipgloss.Width(r.label); w > labelWidth {
			labelWidth = w
		}
	}

	lines := []string{TitleStyle.Render(title)}
	for _, r := range rows {
		label := LabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, r.label))
		lines = append(lines, label+"  "+renderValue(r))
	}
	return TableStyle.Render(strings.Join(lines, "\n"))
}

func renderValue(r row) string {
	if r.value == "" || r.value == sampler.NA {
		v := r.value
		if v == "" {
			v = "-"
		}
		return MissingStyle.Render(v)
	}
	if !r.bar {
		return ValueStyle.Render(r.value)
	}
	pct, ok := parsePercent(r.value)
	if !ok {
		return ValueStyle.Render(r.value)
	}
	return ProgressBar(barWidth, pct) + " " +
		lipgloss.NewStyle().Foreground(MetricColor(pct)).Render(r.value)
}

func gatewayRows(s State) []row {
	var info sampler.OSInfo
	if s.Static != nil && s.Static.OSInfo != nil {
		info = *s.Static.OSInfo
	}
	var t sampler.TimeFacts
	if s.Dynamic != nil && s.Dynamic.Time != nil {
		t = *s.Dynamic.Time
	}
	return []row{
		{label: "Distro", value: info.Distro},
		{label: "Kernel", value: info.Kernel},
		{label: "Arch", value: info.Arch},
		{label: "Serial", value: info.Serial},
		{label: "Date", value: t.CurrentTime},
		{label: "Uptime", value: t.Uptime},
		{label: "Timezone", value: t.Timezone},
	}
}

func osRows(d *sampler.DynamicFacts) []row {
	var (
		cpu  sampler.CPUFacts
		ram  sampler.MemoryRAM
		disk sampler.MemoryDisk
	)
	if d != nil {
		if d.CPU != nil {
			cpu = *d.CPU
		}
		if d.MemoryRAM != nil {
			ram = *d.MemoryRAM
		}
		if d.MemoryDisk != nil {
			disk = *d.MemoryDisk
		}
	}
	return []row{
		{label: "CPU Load", value: cpu.CurrentLoad, bar: true},
		{label: "CPU User", value: cpu.CurrentLoadUser},
		{label: "CPU System", value: cpu.CurrentLoadSystem},
		{label: "RAM Total (MB)", value: ram.Total},
		{label: "RAM Used (MB)", value: ram.Used},
		{label: "RAM Active (MB)", value: ram.Active},
		{label: "Active RAM", value: ram.ActivePercent, bar: true},
		{label: "Disk Total (MB)", value: disk.Total},
		{label: "Disk Used (MB)", value: disk.Used},
		{label: "Disk Used", value: disk.UsedPercent, bar: true},
	}
}

func connectivityRows(s *sampler.StaticFacts) []row {
	var n sampler.Network
	if s != nil && s.Network != nil {
		n = *s.Network
	}
	return []row{
		{label: "IP", value: n.IP4},
		{label: "Gateway IP", value: n.Gateway},
		{label: "Connection Type", value: n.Type},
		{label: "Interface", value: n.Iface},
	}
}

func analogRows(a sampler.AnalogReadings) []row {
	rows := make([]row, 0, len(sensor.Channels))
	for _, ch := range sensor.Channels {
		rows = append(rows, row{label: ch, value: a[ch], bar: true})
	}
	return rows
}
