// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sessions

import (
	"maps"
	"slices"

	"github.com/google/btree"

	"github.com/vechain/collator/thor"
)

// Totals counts blocks authored in a session.
type Totals struct {
	Total      uint32 // every authored block
	Rewardable uint32 // blocks by non-invulnerable authors
}

// Produced is the number of rewardable blocks one candidate authored.
type Produced struct {
	Candidate thor.Address
	Blocks    uint32
}

func lessProduced(a, b Produced) bool {
	return a.Candidate.Compare(b.Candidate) < 0
}

type session struct {
	totals   Totals
	pool     uint64
	produced *btree.BTreeG[Produced]
}

func newSession() *session {
	return &session{produced: btree.NewG(8, lessProduced)}
}

// Accounting keeps block counters and reward pools of the current and previous session.
type Accounting struct {
	current  uint32
	sessions map[uint32]*session
}

func New() *Accounting {
	return &Accounting{
		sessions: map[uint32]*session{0: newSession()},
	}
}

// Current returns the index of the running session.
func (a *Accounting) Current() uint32 {
	return a.current
}

// Start makes idx the current session with zeroed counters and drops every session
// older than idx-1. It returns how many undisbursed payouts were dropped.
func (a *Accounting) Start(idx uint32) (dropped int) {
	a.current = idx
	a.sessions[idx] = newSession()
	for i, s := range a.sessions {
		if i+1 < idx {
			dropped += s.produced.Len()
			delete(a.sessions, i)
		}
	}
	return dropped
}

func (a *Accounting) get(idx uint32) *session {
	s, ok := a.sessions[idx]
	if !ok {
		s = newSession()
		a.sessions[idx] = s
	}
	return s
}

// RecordBlock counts a block authored in the current session.
func (a *Accounting) RecordBlock(author thor.Address, rewardable bool) {
	s := a.get(a.current)
	s.totals.Total++
	if !rewardable {
		return
	}
	s.totals.Rewardable++
	p, _ := s.produced.Get(Produced{Candidate: author})
	s.produced.ReplaceOrInsert(Produced{Candidate: author, Blocks: p.Blocks + 1})
}

func (a *Accounting) Totals(idx uint32) Totals {
	if s, ok := a.sessions[idx]; ok {
		return s.totals
	}
	return Totals{}
}

// SetPool records the reward pool of session idx.
func (a *Accounting) SetPool(idx uint32, pool uint64) {
	a.get(idx).pool = pool
}

func (a *Accounting) Pool(idx uint32) uint64 {
	if s, ok := a.sessions[idx]; ok {
		return s.pool
	}
	return 0
}

// ProducedBlocks returns how many rewardable blocks candidate authored in session idx.
func (a *Accounting) ProducedBlocks(idx uint32, candidate thor.Address) uint32 {
	if s, ok := a.sessions[idx]; ok {
		p, _ := s.produced.Get(Produced{Candidate: candidate})
		return p.Blocks
	}
	return 0
}

// Pending returns how many payouts of session idx are not yet disbursed.
func (a *Accounting) Pending(idx uint32) int {
	if s, ok := a.sessions[idx]; ok {
		return s.produced.Len()
	}
	return 0
}

// PopProduced removes and returns the next payout of session idx, in address order.
func (a *Accounting) PopProduced(idx uint32) (Produced, bool) {
	s, ok := a.sessions[idx]
	if !ok {
		return Produced{}, false
	}
	return s.produced.DeleteMin()
}

// Snapshot is the persisted form of one session.
type Snapshot struct {
	Index    uint32
	Totals   Totals
	Pool     uint64
	Produced []Produced
}

// Snapshots returns every retained session in ascending order.
func (a *Accounting) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(a.sessions))
	for _, idx := range slices.Sorted(maps.Keys(a.sessions)) {
		s := a.sessions[idx]
		snap := Snapshot{Index: idx, Totals: s.totals, Pool: s.pool}
		s.produced.Ascend(func(p Produced) bool {
			snap.Produced = append(snap.Produced, p)
			return true
		})
		out = append(out, snap)
	}
	return out
}

// Restore replaces all sessions.
func (a *Accounting) Restore(current uint32, snaps []Snapshot) {
	a.current = current
	a.sessions = make(map[uint32]*session, len(snaps))
	for _, snap := range snaps {
		s := newSession()
		s.totals = snap.Totals
		s.pool = snap.Pool
		for _, p := range snap.Produced {
			s.produced.ReplaceOrInsert(p)
		}
		a.sessions[snap.Index] = s
	}
	a.get(current)
}
