package facts

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// errNoDefaultRoute is returned when the route table has no default entry.
var errNoDefaultRoute = errors.New("no default route")

const rtfGateway = 0x2

// parseRouteTable extracts the default gateway from a /proc/net/route
// table. Addresses in that file are little-endian hex.
func parseRouteTable(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		if fields[1] != "00000000" {
			continue
		}
		flags, err := strconv.ParseUint(fields[3], 16, 32)
		if err != nil || flags&rtfGateway == 0 {
			continue
		}
		raw, err := hex.DecodeString(fields[2])
		if err != nil || len(raw) != 4 {
			return "", fmt.Errorf("malformed gateway %q", fields[2])
		}
		ip := make(net.IP, 4)
		binary.BigEndian.PutUint32(ip, binary.LittleEndian.Uint32(raw))
		return ip.String(), nil
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", errNoDefaultRoute
}
