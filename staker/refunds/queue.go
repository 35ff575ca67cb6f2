// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package refunds

import (
	"github.com/vechain/collator/thor"
)

type link struct {
	prev, next thor.Address
}

// Queue is a FIFO of ex-candidates whose stakers still await a refund.
// Membership is a set: adding a present account is a no-op, and any
// account can be dropped in O(1).
type Queue struct {
	head  thor.Address
	tail  thor.Address
	links map[thor.Address]link
}

func New() *Queue {
	return &Queue{links: make(map[thor.Address]link)}
}

// Add appends an address to the end of the queue.
func (q *Queue) Add(address thor.Address) {
	if q.Contains(address) {
		return
	}
	if len(q.links) == 0 {
		// the queue is currently empty, set this entry to head & tail
		q.head = address
		q.tail = address
		q.links[address] = link{}
		return
	}

	oldTail := q.tail
	l := q.links[oldTail]
	l.next = address
	q.links[oldTail] = l

	q.links[address] = link{prev: oldTail}
	q.tail = address
}

// Contains reports whether address is queued.
func (q *Queue) Contains(address thor.Address) bool {
	_, ok := q.links[address]
	return ok
}

// Remove extracts an address from anywhere in the queue. Returns false if absent.
func (q *Queue) Remove(address thor.Address) bool {
	l, ok := q.links[address]
	if !ok {
		return false
	}
	delete(q.links, address)

	if address == q.head {
		q.head = l.next
	} else {
		p := q.links[l.prev]
		p.next = l.next
		q.links[l.prev] = p
	}

	if address == q.tail {
		q.tail = l.prev
	} else {
		n := q.links[l.next]
		n.prev = l.prev
		q.links[l.next] = n
	}

	if len(q.links) == 0 {
		q.head, q.tail = thor.Address{}, thor.Address{}
	}
	return true
}

// Peek returns the oldest entry without removing it.
func (q *Queue) Peek() (thor.Address, bool) {
	if len(q.links) == 0 {
		return thor.Address{}, false
	}
	return q.head, true
}

// Pop removes and returns the oldest entry.
func (q *Queue) Pop() (thor.Address, bool) {
	head, ok := q.Peek()
	if !ok {
		return thor.Address{}, false
	}
	q.Remove(head)
	return head, true
}

func (q *Queue) Len() int {
	return len(q.links)
}

// All returns the queued accounts oldest first.
func (q *Queue) All() []thor.Address {
	out := make([]thor.Address, 0, len(q.links))
	if len(q.links) == 0 {
		return out
	}
	for ptr := q.head; ; {
		out = append(out, ptr)
		if ptr == q.tail {
			break
		}
		ptr = q.links[ptr].next
	}
	return out
}
