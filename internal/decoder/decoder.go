package decoder

import (
	"bytes"

	"fireplace_rf/internal/logger"
)

// Result is the outcome of decoding one capture.
type Result struct {
	Command CommandCode `json:"command"`
	// Packet is the accepted packet, nil when nothing was accepted.
	Packet Packet `json:"packet,omitempty"`
}

// Decoder turns captured pulse durations into command codes for one protocol.
// It is not safe for concurrent use.
type Decoder struct {
	proto Protocol
	log   *logger.Logger
	stats *Statistics

	packer    *bitPacker
	sync      int
	stopped   bool
	discard   bool
	pending   Packet
	confirmed Packet
}

// NewDecoder builds a decoder for the protocol. A nil logger discards output.
func NewDecoder(p Protocol, log *logger.Logger) *Decoder {
	d := &Decoder{
		proto: p,
		log:   logger.OrNop(log),
		stats: NewStatistics(),
	}
	d.reset()
	return d
}

// Protocol returns the decoder's protocol parameters.
func (d *Decoder) Protocol() Protocol { return d.proto }

// Statistics returns the live counters.
func (d *Decoder) Statistics() *Statistics { return d.stats }

func (d *Decoder) reset() {
	d.packer = newBitPacker(d.proto.PacketSize, d.proto.SkipBits)
	d.sync = d.proto.SyncMarkers
	d.stopped = false
	d.discard = false
	d.pending = nil
	d.confirmed = nil
}

// Decode runs one capture through the state machine. Every capture starts
// from a clean state; the end of the capture counts as a frame boundary.
func (d *Decoder) Decode(durations []int) Result {
	d.reset()
	d.stats.Captures++
	defer d.stats.touch()

	for _, dur := range durations {
		if pkt, ok := d.feed(dur); ok {
			return d.accept(pkt)
		}
		if d.stopped {
			break
		}
	}
	if !d.stopped {
		if pkt, ok := d.boundary(); ok {
			return d.accept(pkt)
		}
	}

	d.stats.Unknown++
	d.log.Warnw("decode_unknown_command",
		"protocol", d.proto.Name,
		"durations", len(durations),
		"reason", "no packet accepted",
	)
	return Result{Command: Unknown}
}

func (d *Decoder) feed(dur int) (Packet, bool) {
	if dur < d.proto.GapThreshold {
		// gaps before the sync marker carry nothing
		if d.sync > 0 {
			return nil, false
		}
		if !d.proto.RequireRepeat {
			if d.packer.partial() {
				d.stats.Partial++
			}
			d.stopped = true
			return nil, false
		}
		return d.boundary()
	}
	if d.sync > 0 {
		d.sync--
		return nil, false
	}
	if d.discard {
		return nil, false
	}

	run := Classify(dur, d.proto.Unit)
	bit := runBit(run)
	if run < 0 {
		run = -run
	}
	if run < 0 || run > d.proto.maxRun() {
		d.overrun(dur)
		return nil, false
	}
	for i := 0; i < run; i++ {
		if !d.packer.push(bit) {
			continue
		}
		pkt := d.packer.take()
		if !d.proto.RequireRepeat {
			return pkt, true
		}
		// bits after a full packet belong to the trailer until the next boundary
		d.pending = pkt
	}
	return nil, false
}

// overrun drops a frame holding a run longer than any packet. Variant A
// stops; variant B ignores the rest of the frame up to the next boundary.
func (d *Decoder) overrun(dur int) {
	d.stats.Partial++
	d.log.Debugw("decode_run_overflow", "protocol", d.proto.Name, "duration", dur)
	d.packer.clear()
	d.pending = nil
	if !d.proto.RequireRepeat {
		d.stopped = true
		return
	}
	d.discard = true
}

// boundary closes the current frame and reports a packet confirmed by repetition.
func (d *Decoder) boundary() (Packet, bool) {
	d.stats.Frames++
	if d.packer.partial() {
		d.stats.Partial++
		d.log.Debugw("decode_partial_frame", "protocol", d.proto.Name)
	}
	d.packer.clear()

	pending := d.pending
	d.pending = nil
	if pending == nil {
		return nil, false
	}
	if d.confirmed != nil && bytes.Equal(pending, d.confirmed) {
		return pending, true
	}
	if d.confirmed != nil {
		d.stats.Mismatches++
		d.log.Debugw("decode_repeat_mismatch",
			"protocol", d.proto.Name,
			"previous", d.confirmed.String(),
			"current", pending.String(),
		)
	}
	d.confirmed = pending
	return nil, false
}

func (d *Decoder) accept(pkt Packet) Result {
	code := d.proto.Map(pkt)
	if code == Unknown {
		d.stats.Unknown++
		d.log.Warnw("decode_unknown_command",
			"protocol", d.proto.Name,
			"packet", pkt.String(),
		)
		return Result{Command: Unknown, Packet: pkt}
	}
	d.stats.Accepted++
	d.log.Debugw("decode_command",
		"protocol", d.proto.Name,
		"packet", pkt.String(),
		"command", code.String(),
	)
	return Result{Command: code, Packet: pkt}
}

// Decode is a convenience for one-off decoding without keeping statistics.
func Decode(p Protocol, durations []int, log *logger.Logger) Result {
	return NewDecoder(p, log).Decode(durations)
}
