// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package unstaking

import (
	"maps"
	"slices"
	"sort"

	"github.com/vechain/collator/staker/reverts"
	"github.com/vechain/collator/thor"
)

// Request is stake waiting to unlock.
type Request struct {
	Block  uint32
	Amount uint64
}

// Queue holds per-staker requests ordered by unlock block.
type Queue struct {
	requests map[thor.Address][]Request
	max      int
}

func New(maxRequests int) *Queue {
	return &Queue{
		requests: make(map[thor.Address][]Request),
		max:      maxRequests,
	}
}

// Requests returns a copy of the staker's pending requests.
func (q *Queue) Requests(staker thor.Address) []Request {
	return slices.Clone(q.requests[staker])
}

// Len returns the number of pending requests of staker.
func (q *Queue) Len(staker thor.Address) int {
	return len(q.requests[staker])
}

// Room returns how many more requests staker may enqueue.
func (q *Queue) Room(staker thor.Address) int {
	return max(q.max-len(q.requests[staker]), 0)
}

// Enqueue inserts a request keeping ascending block order.
// Requests with equal block keep insertion order.
func (q *Queue) Enqueue(staker thor.Address, block uint32, amount uint64) error {
	list := q.requests[staker]
	if len(list) >= q.max {
		return reverts.ErrTooManyUnstakingRequests
	}
	pos := sort.Search(len(list), func(i int) bool {
		return list[i].Block > block
	})
	q.requests[staker] = slices.Insert(list, pos, Request{Block: block, Amount: amount})
	return nil
}

// Due returns the number and sum of requests unlocked at block without removing them.
func (q *Queue) Due(staker thor.Address, block uint32) (int, uint64) {
	var (
		n   int
		sum uint64
	)
	for _, r := range q.requests[staker] {
		if r.Block > block {
			break
		}
		n++
		sum += r.Amount
	}
	return n, sum
}

// Drain removes the first n requests of staker.
func (q *Queue) Drain(staker thor.Address, n int) {
	list := q.requests[staker]
	if n >= len(list) {
		delete(q.requests, staker)
		return
	}
	q.requests[staker] = slices.Clone(list[n:])
}

// Stakers returns every staker with pending requests, ordered by address.
func (q *Queue) Stakers() []thor.Address {
	return slices.SortedFunc(maps.Keys(q.requests), thor.Address.Compare)
}

// Restore sets the requests of staker, sorting them.
func (q *Queue) Restore(staker thor.Address, requests []Request) {
	if len(requests) == 0 {
		delete(q.requests, staker)
		return
	}
	list := slices.Clone(requests)
	slices.SortStableFunc(list, func(a, b Request) int {
		return int(a.Block) - int(b.Block)
	})
	q.requests[staker] = list
}
