package domain

import (
	"sync/atomic"
	"time"
)

// Stats counts pipeline progress. It is written by the read loop and by
// sink completion callbacks concurrently, so every field is atomic.
type Stats struct {
	framesRead      atomic.Uint64
	framesValid     atomic.Uint64
	framesInvalid   atomic.Uint64
	framesPublished atomic.Uint64
	publishFailures atomic.Uint64
	bytesRead       atomic.Uint64
	lastPlacement   atomic.Pointer[Placement]
	lastDelivery    atomic.Int64
}

// RecordRead counts a frame of n bytes received from the transport.
func (s *Stats) RecordRead(n int) {
	s.framesRead.Add(1)
	s.bytesRead.Add(uint64(n))
}

// RecordValid counts a frame that passed validation.
func (s *Stats) RecordValid() { s.framesValid.Add(1) }

// RecordInvalid counts a frame that was dropped by validation.
func (s *Stats) RecordInvalid() { s.framesInvalid.Add(1) }

// RecordPublished counts a delivered frame and remembers its placement.
func (s *Stats) RecordPublished(p Placement) {
	s.framesPublished.Add(1)
	s.lastPlacement.Store(&p)
	s.lastDelivery.Store(time.Now().UnixNano())
}

// RecordPublishFailure counts a frame the sink failed to deliver.
func (s *Stats) RecordPublishFailure() { s.publishFailures.Add(1) }

// Snapshot returns a consistent-enough copy of the counters for reporting.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		FramesRead:      s.framesRead.Load(),
		FramesValid:     s.framesValid.Load(),
		FramesInvalid:   s.framesInvalid.Load(),
		FramesPublished: s.framesPublished.Load(),
		PublishFailures: s.publishFailures.Load(),
		BytesRead:       s.bytesRead.Load(),
	}
	if p := s.lastPlacement.Load(); p != nil {
		cp := *p
		snap.LastPlacement = &cp
	}
	if ts := s.lastDelivery.Load(); ts != 0 {
		snap.LastDelivery = time.Unix(0, ts).UTC()
	}
	return snap
}

// StatsSnapshot is a point-in-time copy of Stats suitable for serialization.
type StatsSnapshot struct {
	FramesRead      uint64     `json:"frames_read"`
	FramesValid     uint64     `json:"frames_valid"`
	FramesInvalid   uint64     `json:"frames_invalid"`
	FramesPublished uint64     `json:"frames_published"`
	PublishFailures uint64     `json:"publish_failures"`
	BytesRead       uint64     `json:"bytes_read"`
	LastPlacement   *Placement `json:"last_placement,omitempty"`
	LastDelivery    time.Time  `json:"last_delivery,omitempty"`
}

// InFlight returns the number of valid frames whose delivery outcome is unknown.
func (s StatsSnapshot) InFlight() uint64 {
	done := s.FramesPublished + s.PublishFailures
	if done >= s.FramesValid {
		return 0
	}
	return s.FramesValid - done
}
