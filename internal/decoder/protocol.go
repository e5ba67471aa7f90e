package decoder

import (
	"fmt"
	"strings"
)

// DefaultGapThreshold separates transmissions: any space longer than 4.8 ms is a frame boundary.
const DefaultGapThreshold = -4800

// Protocol parameterises the single decoding state machine for one remote family.
type Protocol struct {
	Name string
	// Unit is the nominal bit period in microseconds.
	Unit float64
	// GapThreshold is the (negative) duration below which a space ends a frame.
	GapThreshold int
	// SyncMarkers is the number of leading non-boundary durations consumed as sync.
	SyncMarkers int
	// SkipBits is the header length dropped before packing starts.
	SkipBits int
	// PacketSize is the packet length in bytes.
	PacketSize int
	// RequireRepeat demands two identical consecutive frames before accepting.
	RequireRepeat bool
	// Map turns an accepted packet into a command code.
	Map func(Packet) CommandCode
}

// ProtocolA is the short three-byte remote. It sends a long header that is
// skipped, and the first complete packet after the sync marker is accepted.
var ProtocolA = Protocol{
	Name:          "a",
	Unit:          413,
	GapThreshold:  DefaultGapThreshold,
	SyncMarkers:   1,
	SkipBits:      116,
	PacketSize:    3,
	RequireRepeat: false,
	Map:           mapProtocolA,
}

// ProtocolB is the 22-byte remote. Each frame is repeated and only a frame
// matching its predecessor is accepted.
var ProtocolB = Protocol{
	Name:          "b",
	Unit:          400,
	GapThreshold:  DefaultGapThreshold,
	SyncMarkers:   0,
	SkipBits:      0,
	PacketSize:    22,
	RequireRepeat: true,
	Map:           mapProtocolB,
}

// maxRun is the longest run a packet can contain, header skip included.
func (p Protocol) maxRun() int {
	return p.SkipBits + 8*p.PacketSize
}

// LookupProtocol resolves a configured protocol name.
func LookupProtocol(name string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "a", "variant_a":
		return ProtocolA, nil
	case "b", "variant_b":
		return ProtocolB, nil
	default:
		return Protocol{}, fmt.Errorf("unknown protocol %q", name)
	}
}
