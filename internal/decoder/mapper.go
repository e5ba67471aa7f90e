package decoder

// mapProtocolA checks the fields in a fixed order; the first match wins.
func mapProtocolA(p Packet) CommandCode {
	if len(p) < 3 {
		return Unknown
	}
	switch {
	case p[2]&0x0f == 0x0a:
		return Off
	case p[0] == 0xb3:
		return Cmd1
	case p[0] == 0xcb:
		return Cmd2
	case p[0] == 0xd2:
		return Cmd3
	case p[0] == 0x95:
		return Cmd4
	case p[0] == 0x32:
		return Cmd5
	case p[0] == 0xa5, p[2]&0x0f == 0x04:
		return Cmd6
	default:
		return Unknown
	}
}

var protocolBLevels = map[byte]CommandCode{
	0x56: Cmd1,
	0x6a: Cmd2,
	0x66: Cmd3,
	0x9a: Cmd4,
	0x96: Cmd5,
	0xaa: Cmd6,
}

func mapProtocolB(p Packet) CommandCode {
	if len(p) < 21 {
		return Unknown
	}
	if p[18] == 0xa5 {
		return Off
	}
	if code, ok := protocolBLevels[p[20]]; ok {
		return code
	}
	return Unknown
}
