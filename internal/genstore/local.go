// Package genstore tracks per-key write generations for the near cache.
// A read snapshots the key's Stamp before going to Redis and may only fill
// the near cache if the Stamp is unchanged afterwards.
package genstore

import (
	"sync"
	"time"
)

// pruneEvery is the number of bumps between inline cleanup passes.
const pruneEvery = 1024

// Stamp identifies the state of one key. Epoch moves on BumpAll.
type Stamp struct {
	Epoch uint64
	Gen   uint64
}

type localGenEntry struct {
	Gen       uint64
	UpdatedAt time.Time
}

// Local keeps generations in-process. Entries idle longer than retention
// are pruned while bumping; retention must outlast any single read.
type Local struct {
	mu        sync.RWMutex
	gens      map[string]localGenEntry
	epoch     uint64
	bumps     uint64
	retention time.Duration
}

func NewLocal(retention time.Duration) *Local {
	return &Local{
		gens:      make(map[string]localGenEntry),
		retention: retention,
	}
}

func (s *Local) Snapshot(k string) Stamp {
	s.mu.RLock()
	st := Stamp{Epoch: s.epoch, Gen: s.gens[k].Gen}
	s.mu.RUnlock()
	return st
}

// SnapshotMany reads all keys under one read lock.
func (s *Local) SnapshotMany(ks []string) []Stamp {
	out := make([]Stamp, len(ks))
	s.mu.RLock()
	for i, k := range ks {
		out[i] = Stamp{Epoch: s.epoch, Gen: s.gens[k].Gen}
	}
	s.mu.RUnlock()
	return out
}

// Valid reports whether k still carries st.
func (s *Local) Valid(k string, st Stamp) bool { return s.Snapshot(k) == st }

func (s *Local) Bump(k string) {
	now := time.Now()
	s.mu.Lock()
	e := s.gens[k]
	e.Gen++
	e.UpdatedAt = now
	s.gens[k] = e
	s.bumps++
	if s.bumps%pruneEvery == 0 {
		s.pruneLocked(now)
	}
	s.mu.Unlock()
}

// BumpAll invalidates every outstanding Stamp.
func (s *Local) BumpAll() {
	s.mu.Lock()
	s.epoch++
	s.gens = make(map[string]localGenEntry)
	s.mu.Unlock()
}

func (s *Local) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gens)
}

func (s *Local) pruneLocked(now time.Time) {
	if s.retention <= 0 {
		return
	}
	cutoff := now.Add(-s.retention)
	pruned := false
	for k, e := range s.gens {
		if e.UpdatedAt.Before(cutoff) {
			delete(s.gens, k)
			pruned = true
		}
	}
	// a pruned key restarts at gen 0, so older stamps must not match it again
	if pruned {
		s.epoch++
	}
}
