package decoder

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// CommandCode is the decoded meaning of one remote-control packet.
type CommandCode int

const (
	Unknown CommandCode = -1
	Off     CommandCode = 0
	Cmd1    CommandCode = 1
	Cmd2    CommandCode = 2
	Cmd3    CommandCode = 3
	Cmd4    CommandCode = 4
	Cmd5    CommandCode = 5
	Cmd6    CommandCode = 6
)

// AllCommands lists every code a remote can produce, in dispatch order.
var AllCommands = []CommandCode{Off, Cmd1, Cmd2, Cmd3, Cmd4, Cmd5, Cmd6}

func (c CommandCode) String() string {
	switch {
	case c == Off:
		return "off"
	case c >= Cmd1 && c <= Cmd6:
		return fmt.Sprintf("cmd%d", int(c))
	default:
		return "unknown"
	}
}

// ParseCommandCode accepts the names produced by String ("off", "cmd1".."cmd6", "unknown").
func ParseCommandCode(s string) (CommandCode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "unknown" {
		return Unknown, nil
	}
	for _, c := range AllCommands {
		if c.String() == name {
			return c, nil
		}
	}
	return Unknown, fmt.Errorf("unknown command code %q", s)
}

func (c CommandCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CommandCode) UnmarshalText(b []byte) error {
	code, err := ParseCommandCode(string(b))
	if err != nil {
		return err
	}
	*c = code
	return nil
}

// Packet is a completed, fixed-size run of decoded bytes.
type Packet []byte

func (p Packet) String() string {
	return hex.EncodeToString(p)
}

// MarshalText renders the packet as lower-case hex.
func (p Packet) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
