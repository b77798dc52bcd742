package sampler

// StaticFacts is sent once to each observer when it joins.
type StaticFacts struct {
	OSInfo  *OSInfo  `json:"osInfo,omitempty"`
	Network *Network `json:"network,omitempty"`
}

// OSInfo identifies the gateway's operating system and hardware.
type OSInfo struct {
	Distro string `json:"distro"`
	Kernel string `json:"kernel"`
	Arch   string `json:"arch"`
	Serial string `json:"serial"`
}

// Network describes the wireless uplink.
type Network struct {
	IP4     string `json:"ip4"`
	Gateway string `json:"gateway,omitempty"`
	Type    string `json:"type"`
	Iface   string `json:"iface"`
}

// DynamicFacts is sampled every tick. A section is nil when its provider
// call failed on that tick.
type DynamicFacts struct {
	Time       *TimeFacts  `json:"time,omitempty"`
	CPU        *CPUFacts   `json:"cpu,omitempty"`
	MemoryRAM  *MemoryRAM  `json:"memoryRAM,omitempty"`
	MemoryDisk *MemoryDisk `json:"memoryDisk,omitempty"`
}

// TimeFacts holds the formatted wall clock, uptime and timezone.
type TimeFacts struct {
	CurrentTime string `json:"currentTime"`
	Uptime      string `json:"uptime,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

// CPUFacts holds load percentages such as "12.5%".
type CPUFacts struct {
	CurrentLoad       string `json:"currentLoad"`
	CurrentLoadUser   string `json:"currentLoadUser"`
	CurrentLoadSystem string `json:"currentLoadSystem"`
}

// MemoryRAM holds RAM figures in megabytes.
type MemoryRAM struct {
	Total         string `json:"total"`
	Active        string `json:"active"`
	Used          string `json:"used"`
	ActivePercent string `json:"activePercent"`
}

// MemoryDisk holds usage of the first reported mount in megabytes.
type MemoryDisk struct {
	Total       string `json:"total"`
	Used        string `json:"used"`
	UsedPercent string `json:"usedPercent"`
}

// AnalogReadings maps a channel ID to its formatted reading,
// e.g. "A3" -> "50.0% 0.900V".
type AnalogReadings map[string]string
