// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/google/btree"

	"github.com/vechain/collator/thor"
)

const degree = 8

// Entry is the stake one staker has locked on one candidate.
type Entry struct {
	Candidate thor.Address
	Staker    thor.Address
	Amount    uint64
}

func byCandidate(a, b Entry) bool {
	if c := a.Candidate.Compare(b.Candidate); c != 0 {
		return c < 0
	}
	return a.Staker.Compare(b.Staker) < 0
}

func byStaker(a, b Entry) bool {
	if c := a.Staker.Compare(b.Staker); c != 0 {
		return c < 0
	}
	return a.Candidate.Compare(b.Candidate) < 0
}

// Ledger is the (candidate, staker) -> amount double map.
// Zero amounts are never stored. Both indexes iterate in address order.
type Ledger struct {
	candidates *btree.BTreeG[Entry]
	stakers    *btree.BTreeG[Entry]
	counts     map[thor.Address]uint32
}

func New() *Ledger {
	return &Ledger{
		candidates: btree.NewG(degree, byCandidate),
		stakers:    btree.NewG(degree, byStaker),
		counts:     make(map[thor.Address]uint32),
	}
}

// Get returns the amount staker has on candidate.
func (l *Ledger) Get(candidate, staker thor.Address) uint64 {
	e, _ := l.candidates.Get(Entry{Candidate: candidate, Staker: staker})
	return e.Amount
}

// Add increases the entry by amount, returning the new amount and whether the entry is new.
func (l *Ledger) Add(candidate, staker thor.Address, amount uint64) (uint64, bool) {
	current := l.Get(candidate, staker)
	if amount == 0 {
		return current, false
	}
	e := Entry{Candidate: candidate, Staker: staker, Amount: current + amount}
	l.candidates.ReplaceOrInsert(e)
	l.stakers.ReplaceOrInsert(e)
	if current == 0 {
		l.counts[staker]++
	}
	return e.Amount, current == 0
}

// Remove deletes the entry and returns the amount it held.
func (l *Ledger) Remove(candidate, staker thor.Address) uint64 {
	e, ok := l.candidates.Delete(Entry{Candidate: candidate, Staker: staker})
	if !ok {
		return 0
	}
	l.stakers.Delete(e)
	if l.counts[staker] <= 1 {
		delete(l.counts, staker)
	} else {
		l.counts[staker]--
	}
	return e.Amount
}

// StakeCount returns on how many candidates staker has stake.
func (l *Ledger) StakeCount(staker thor.Address) uint32 {
	return l.counts[staker]
}

// StakersOf lists every entry on candidate.
func (l *Ledger) StakersOf(candidate thor.Address) []Entry {
	var out []Entry
	l.candidates.AscendGreaterOrEqual(Entry{Candidate: candidate}, func(e Entry) bool {
		if e.Candidate != candidate {
			return false
		}
		out = append(out, e)
		return true
	})
	return out
}

// CandidatesOf lists every entry held by staker.
func (l *Ledger) CandidatesOf(staker thor.Address) []Entry {
	var out []Entry
	l.stakers.AscendGreaterOrEqual(Entry{Staker: staker}, func(e Entry) bool {
		if e.Staker != staker {
			return false
		}
		out = append(out, e)
		return true
	})
	return out
}

// Total sums the entries on candidate.
func (l *Ledger) Total(candidate thor.Address) (amount uint64, stakers uint32) {
	for _, e := range l.StakersOf(candidate) {
		amount += e.Amount
		stakers++
	}
	return
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return l.candidates.Len()
}

// Entries returns every entry ordered by candidate then staker.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, l.candidates.Len())
	l.candidates.Ascend(func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}
