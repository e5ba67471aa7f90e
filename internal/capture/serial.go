package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

const (
	serialReadTimeout = 250 * time.Millisecond
	maxLineLength     = 64 << 10
)

// SerialConfig describes a receiver that prints one burst per line.
type SerialConfig struct {
	Port string
	Baud int
}

// SerialSource reads newline-terminated bursts such as
// "Received Raw: 413, -826, 413" from a serial sniffer.
type SerialSource struct {
	r       io.Reader
	closer  io.Closer
	pending []byte
	buf     []byte
}

func OpenSerial(cfg SerialConfig) (*SerialSource, error) {
	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", cfg.Port, err)
	}
	return NewLineSource(port, port), nil
}

// NewLineSource reads bursts from any line-oriented reader, such as a saved
// capture file. c may be nil.
func NewLineSource(r io.Reader, c io.Closer) *SerialSource {
	return &SerialSource{r: r, closer: c, buf: make([]byte, 1024)}
}

// Next returns the next non-empty burst. Lines that do not parse are skipped.
func (s *SerialSource) Next(ctx context.Context) ([]int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i := bytes.IndexByte(s.pending, '\n'); i >= 0 {
			line := string(s.pending[:i])
			s.pending = s.pending[i+1:]
			durs, err := ParseDurations(line)
			if err != nil || len(durs) == 0 {
				continue
			}
			return durs, nil
		}
		if len(s.pending) > maxLineLength {
			s.pending = s.pending[:0]
		}

		// a read timeout returns 0, nil
		n, err := s.r.Read(s.buf)
		s.pending = append(s.pending, s.buf[:n]...)
		if err != nil {
			if err == io.EOF && len(s.pending) > 0 {
				s.pending = append(s.pending, '\n')
				continue
			}
			return nil, err
		}
	}
}

func (s *SerialSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ParseDurations parses comma or space separated signed integers. Anything up
// to the last ':' is treated as a label.
func ParseDurations(line string) ([]int, error) {
	if i := strings.LastIndexByte(line, ':'); i >= 0 {
		line = line[i+1:]
	}
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\r' || r == ';'
	})
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", f, err)
		}
		if v == 0 {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
