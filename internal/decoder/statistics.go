package decoder

import (
	"fmt"
	"time"
)

// Statistics tracks how captures fared in the decoder.
type Statistics struct {
	StartTime      time.Time `json:"start_time"`
	LastUpdateTime time.Time `json:"last_update_time"`

	Captures   uint64 `json:"captures"`
	Frames     uint64 `json:"frames"`
	Accepted   uint64 `json:"accepted"`
	Unknown    uint64 `json:"unknown"`
	Mismatches uint64 `json:"mismatches"`
	Partial    uint64 `json:"partial"`
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{StartTime: now, LastUpdateTime: now}
}

// Reset clears all counters and restarts the clock.
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}

// Snapshot returns a copy safe to hand to other goroutines.
func (s *Statistics) Snapshot() Statistics {
	return *s
}

// AcceptRate is the share of captures that produced a known command.
func (s *Statistics) AcceptRate() float64 {
	if s.Captures == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Captures)
}

func (s *Statistics) String() string {
	return fmt.Sprintf(
		"captures=%d frames=%d accepted=%d unknown=%d mismatches=%d partial=%d uptime=%s",
		s.Captures, s.Frames, s.Accepted, s.Unknown, s.Mismatches, s.Partial,
		s.LastUpdateTime.Sub(s.StartTime).Round(time.Second),
	)
}

func (s *Statistics) touch() {
	s.LastUpdateTime = time.Now()
}
