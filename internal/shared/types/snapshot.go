package types

import "time"

// Snapshot is a point-in-time capture of every catalog parameter's observed
// value. At most one snapshot exists at a time: each backup replaces the
// file wholesale, and only Restore reads it back.
type Snapshot struct {
	TakenAt time.Time                `json:"taken_at"`
	Entries map[string]ObservedValue `json:"entries"`
}

// NewSnapshot builds an empty snapshot stamped with now
func NewSnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		TakenAt: now.UTC(),
		Entries: make(map[string]ObservedValue),
	}
}

// Lookup returns the entry for key. A snapshot can be partial: a read that
// failed during backup may simply be missing here.
func (s *Snapshot) Lookup(key string) (ObservedValue, bool) {
	v, ok := s.Entries[key]
	return v, ok
}

// Record stores one observed value under its parameter key
func (s *Snapshot) Record(v ObservedValue) {
	s.Entries[v.Key] = v
}
