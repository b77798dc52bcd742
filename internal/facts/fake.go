package facts

import (
	"context"
	"sync"
	"time"
)

// Method names accepted as keys in Fake.Errs.
const (
	MethodOSInfo            = "OSInfo"
	MethodNetworkInterfaces = "NetworkInterfaces"
	MethodDefaultGateway    = "DefaultGateway"
	MethodTime              = "Time"
	MethodCPULoad           = "CPULoad"
	MethodMemory            = "Memory"
	MethodDiskUsage         = "DiskUsage"
)

// Fake is a Provider returning canned values. Errs makes individual methods
// fail; Delay makes every call block (honoring ctx) before answering.
type Fake struct {
	OS         OSInfo
	Interfaces []NetworkInterface
	Gateway    string
	TimeInfo   TimeInfo
	Load       CPULoad
	Mem        Memory
	Disks      []DiskUsage

	Errs  map[string]error
	Delay time.Duration

	mu    sync.Mutex
	calls map[string]int
}

// Calls returns how many times method has been invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) enter(ctx context.Context, method string) error {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
	f.mu.Unlock()

	if f.Delay > 0 {
		t := time.NewTimer(f.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return f.Errs[method]
}

func (f *Fake) OSInfo(ctx context.Context) (OSInfo, error) {
	if err := f.enter(ctx, MethodOSInfo); err != nil {
		return OSInfo{}, err
	}
	return f.OS, nil
}

func (f *Fake) NetworkInterfaces(ctx context.Context) ([]NetworkInterface, error) {
	if err := f.enter(ctx, MethodNetworkInterfaces); err != nil {
		return nil, err
	}
	return f.Interfaces, nil
}

func (f *Fake) DefaultGateway(ctx context.Context) (string, error) {
	if err := f.enter(ctx, MethodDefaultGateway); err != nil {
		return "", err
	}
	return f.Gateway, nil
}

func (f *Fake) Time(ctx context.Context) (TimeInfo, error) {
	if err := f.enter(ctx, MethodTime); err != nil {
		return TimeInfo{}, err
	}
	return f.TimeInfo, nil
}

func (f *Fake) CPULoad(ctx context.Context) (CPULoad, error) {
	if err := f.enter(ctx, MethodCPULoad); err != nil {
		return CPULoad{}, err
	}
	return f.Load, nil
}

func (f *Fake) Memory(ctx context.Context) (Memory, error) {
	if err := f.enter(ctx, MethodMemory); err != nil {
		return Memory{}, err
	}
	return f.Mem, nil
}

func (f *Fake) DiskUsage(ctx context.Context) ([]DiskUsage, error) {
	if err := f.enter(ctx, MethodDiskUsage); err != nil {
		return nil, err
	}
	return f.Disks, nil
}

var _ Provider = (*Fake)(nil)
