// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package candidates

import (
	"slices"
	"sort"

	"github.com/vechain/collator/staker/reverts"
	"github.com/vechain/collator/thor"
)

// Candidate is an account bidding for a collator slot.
type Candidate struct {
	Who     thor.Address
	Deposit uint64 // the candidate's own stake
	Stake   uint64 // total stake from every staker, the ranking key
	Stakers uint32 // distinct stakers with a non-zero entry, self included
}

// Registry is a bounded list of candidates ordered ascending by stake.
// Among equal stakes the most recently inserted entry ranks higher.
type Registry struct {
	list []Candidate
	max  int
}

func New(maxCandidates int) *Registry {
	return &Registry{
		list: make([]Candidate, 0, maxCandidates),
		max:  maxCandidates,
	}
}

func (r *Registry) Len() int { return len(r.list) }

func (r *Registry) Cap() int { return r.max }

func (r *Registry) IsFull() bool { return len(r.list) >= r.max }

// At returns the candidate at rank i, 0 being the lowest.
func (r *Registry) At(i int) Candidate { return r.list[i] }

// All returns a copy of the list, lowest stake first.
func (r *Registry) All() []Candidate {
	out := make([]Candidate, len(r.list))
	copy(out, r.list)
	return out
}

// IndexOf returns the rank of who.
func (r *Registry) IndexOf(who thor.Address) (int, bool) {
	for i := range r.list {
		if r.list[i].Who == who {
			return i, true
		}
	}
	return -1, false
}

func (r *Registry) Get(who thor.Address) (Candidate, bool) {
	if i, ok := r.IndexOf(who); ok {
		return r.list[i], true
	}
	return Candidate{}, false
}

func (r *Registry) Contains(who thor.Address) bool {
	_, ok := r.IndexOf(who)
	return ok
}

// Insert places c at its rank and returns the index.
func (r *Registry) Insert(c Candidate) (int, error) {
	if r.Contains(c.Who) {
		return 0, reverts.ErrAlreadyCandidate
	}
	if r.IsFull() {
		return 0, reverts.ErrTooManyCandidates
	}
	return r.insert(c), nil
}

func (r *Registry) insert(c Candidate) int {
	// after all entries with equal stake
	pos := sort.Search(len(r.list), func(i int) bool {
		return r.list[i].Stake > c.Stake
	})
	r.list = append(r.list, Candidate{})
	copy(r.list[pos+1:], r.list[pos:])
	r.list[pos] = c
	return pos
}

// Modify mutates the candidate at i in place without reordering.
// Callers must follow up with ReassignPosition.
func (r *Registry) Modify(i int, f func(c *Candidate)) {
	f(&r.list[i])
}

// ReassignPosition moves the candidate at i to its rank and returns the new index.
func (r *Registry) ReassignPosition(i int) int {
	return r.insert(r.RemoveAt(i))
}

// ReassignPositions moves every listed candidate to its rank. Use it after
// modifying several candidates, since ReassignPosition needs the rest of
// the list in order. Candidates re-enter in the given order, so among equal
// stakes the later one ranks higher. Accounts not in the registry are ignored.
func (r *Registry) ReassignPositions(accounts []thor.Address) {
	idxs := make([]int, 0, len(accounts))
	for _, who := range accounts {
		if i, ok := r.IndexOf(who); ok {
			idxs = append(idxs, i)
		}
	}
	slices.Sort(idxs)
	idxs = slices.Compact(idxs)

	moved := make(map[thor.Address]Candidate, len(idxs))
	for _, i := range slices.Backward(idxs) {
		c := r.RemoveAt(i)
		moved[c.Who] = c
	}
	for _, who := range accounts {
		if c, ok := moved[who]; ok {
			r.insert(c)
			delete(moved, who)
		}
	}
}

func (r *Registry) RemoveAt(i int) Candidate {
	c := r.list[i]
	r.list = append(r.list[:i], r.list[i+1:]...)
	return c
}

func (r *Registry) Remove(who thor.Address) (Candidate, bool) {
	i, ok := r.IndexOf(who)
	if !ok {
		return Candidate{}, false
	}
	return r.RemoveAt(i), true
}

// Lowest returns the lowest ranked candidate.
func (r *Registry) Lowest() (Candidate, bool) {
	if len(r.list) == 0 {
		return Candidate{}, false
	}
	return r.list[0], true
}

// Top returns up to n accounts with the highest stake, highest first.
func (r *Registry) Top(n int) []thor.Address {
	n = min(n, len(r.list))
	out := make([]thor.Address, 0, n)
	for i := len(r.list) - 1; i >= len(r.list)-n; i-- {
		out = append(out, r.list[i].Who)
	}
	return out
}

// Restore replaces the list, re-sorting it. Used when loading a snapshot.
func (r *Registry) Restore(list []Candidate) error {
	r.list = r.list[:0]
	for _, c := range list {
		if _, err := r.Insert(c); err != nil {
			return err
		}
	}
	return nil
}
