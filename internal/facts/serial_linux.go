//go:build linux

package facts

import (
	"sync"

	"github.com/zcalusic/sysinfo"
)

var (
	si     sysinfo.SysInfo
	siOnce sync.Once
)

// hardwareSerial returns the product or board serial from DMI, falling back
// to the machine ID. DMI serials are only readable as root.
func hardwareSerial() string {
	siOnce.Do(si.GetSysInfo)
	switch {
	case si.Product.Serial != "":
		return si.Product.Serial
	case si.Board.Serial != "":
		return si.Board.Serial
	}
	return si.Node.MachineID
}
