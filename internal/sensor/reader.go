// Package sensor reads ratiometric analog inputs.
//
// A reading is a float in [0,1] relative to the ADC full scale. Readers
// never fail: missing hardware or unparsable data yields NaN, which the
// sampler formats as "N/A".
package sensor

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Channels is the fixed set of analog inputs sampled every tick.
// BeagleBone header pins: A3 P9_38, A4 P9_33, A5 P9_36, A6 P9_35.
var Channels = []string{"A3", "A4", "A5", "A6"}

// Reader returns an instantaneous reading for a channel.
type Reader interface {
	ReadChannel(id string) float64
}

// DefaultDevice is the BeagleBone AM335x ADC under the IIO subsystem.
const DefaultDevice = "/sys/bus/iio/devices/iio:device0"

// DefaultFullScale is the maximum raw value of the 12-bit ADC.
const DefaultFullScale = 4095

// IIO reads channels from a Linux Industrial I/O device directory.
type IIO struct {
	device    string
	fullScale float64
}

// NewIIO creates a reader for the IIO device at dir. A non-positive
// fullScale selects DefaultFullScale.
func NewIIO(dir string, fullScale int) *IIO {
	if fullScale <= 0 {
		fullScale = DefaultFullScale
	}
	return &IIO{device: dir, fullScale: float64(fullScale)}
}

// ReadChannel reads in_voltage<N>_raw for channel "A<N>".
func (r *IIO) ReadChannel(id string) float64 {
	n, ok := channelIndex(id)
	if !ok {
		return math.NaN()
	}
	data, err := os.ReadFile(filepath.Join(r.device, fmt.Sprintf("in_voltage%d_raw", n)))
	if err != nil {
		return math.NaN()
	}
	raw, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return math.NaN()
	}
	return raw / r.fullScale
}

// Available reports whether the device directory exists.
func (r *IIO) Available() bool {
	_, err := os.Stat(r.device)
	return err == nil
}

func channelIndex(id string) (int, bool) {
	if len(id) < 2 || (id[0] != 'A' && id[0] != 'a') {
		return 0, false
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Static serves fixed readings. Unknown channels read as NaN.
type Static struct {
	mu     sync.RWMutex
	values map[string]float64
}

// NewStatic creates a Static reader with the given values.
func NewStatic(values map[string]float64) *Static {
	s := &Static{values: make(map[string]float64, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Set changes the value of one channel.
func (s *Static) Set(id string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = v
}

func (s *Static) ReadChannel(id string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[id]
	if !ok {
		return math.NaN()
	}
	return v
}

// Simulated returns a Static reader with distinct mid-scale values on
// every channel, used by serve --simulate.
func Simulated() *Static {
	vals := make(map[string]float64, len(Channels))
	for i, ch := range Channels {
		vals[ch] = 0.2 + 0.2*float64(i)
	}
	return NewStatic(vals)
}
