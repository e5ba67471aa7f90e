package decoder

import "math"

// Classify converts a signed duration into a signed run length of bit periods.
func Classify(duration int, unit float64) int {
	return int(math.Round(float64(duration) / unit))
}

// runBit is the bit value carried by every period of a run.
func runBit(run int) byte {
	if run > 0 {
		return 1
	}
	return 0
}

// bitPacker accumulates bits MSB-first into a fixed-size packet.
type bitPacker struct {
	skip  int
	cur   byte
	nbits int
	buf   []byte
	n     int
}

func newBitPacker(size, skip int) *bitPacker {
	return &bitPacker{skip: skip, buf: make([]byte, size)}
}

// push adds one bit and reports whether it completed the packet.
func (p *bitPacker) push(bit byte) bool {
	if p.skip > 0 {
		p.skip--
		return false
	}
	p.cur = p.cur<<1 | bit&1
	p.nbits++
	if p.nbits < 8 {
		return false
	}
	p.buf[p.n] = p.cur
	p.n++
	p.cur, p.nbits = 0, 0
	return p.n == len(p.buf)
}

// take returns a copy of the completed packet and clears the fill.
func (p *bitPacker) take() Packet {
	out := make(Packet, len(p.buf))
	copy(out, p.buf)
	p.clear()
	return out
}

// partial reports whether any bits of an unfinished packet are buffered.
func (p *bitPacker) partial() bool {
	return p.n > 0 || p.nbits > 0
}

// clear drops the current fill but keeps the header skip budget.
func (p *bitPacker) clear() {
	p.cur, p.nbits, p.n = 0, 0, 0
}
