// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/collator/thor"
)

func addr(b byte) thor.Address {
	return thor.BytesToAddress([]byte{b})
}

func TestLedgerAddRemove(t *testing.T) {
	l := New()

	amount, created := l.Add(addr(1), addr(1), 10)
	assert.Equal(t, uint64(10), amount)
	assert.True(t, created)

	amount, created = l.Add(addr(1), addr(1), 5)
	assert.Equal(t, uint64(15), amount)
	assert.False(t, created)

	amount, created = l.Add(addr(1), addr(2), 0)
	assert.Equal(t, uint64(0), amount)
	assert.False(t, created)
	assert.Equal(t, 1, l.Len())

	l.Add(addr(2), addr(1), 7)
	assert.Equal(t, uint32(2), l.StakeCount(addr(1)))

	assert.Equal(t, uint64(15), l.Remove(addr(1), addr(1)))
	assert.Equal(t, uint64(0), l.Remove(addr(1), addr(1)))
	assert.Equal(t, uint32(1), l.StakeCount(addr(1)))
	assert.Equal(t, uint64(0), l.Get(addr(1), addr(1)))

	assert.Equal(t, uint64(7), l.Remove(addr(2), addr(1)))
	assert.Equal(t, uint32(0), l.StakeCount(addr(1)))
	assert.Equal(t, 0, l.Len())
}

func TestLedgerIndexes(t *testing.T) {
	l := New()
	l.Add(addr(3), addr(5), 1)
	l.Add(addr(3), addr(4), 2)
	l.Add(addr(2), addr(4), 3)
	l.Add(addr(4), addr(4), 4)

	assert.Equal(t, []Entry{
		{Candidate: addr(3), Staker: addr(4), Amount: 2},
		{Candidate: addr(3), Staker: addr(5), Amount: 1},
	}, l.StakersOf(addr(3)))

	assert.Equal(t, []Entry{
		{Candidate: addr(2), Staker: addr(4), Amount: 3},
		{Candidate: addr(3), Staker: addr(4), Amount: 2},
		{Candidate: addr(4), Staker: addr(4), Amount: 4},
	}, l.CandidatesOf(addr(4)))

	assert.Empty(t, l.StakersOf(addr(9)))
	assert.Empty(t, l.CandidatesOf(addr(9)))

	total, stakers := l.Total(addr(3))
	assert.Equal(t, uint64(3), total)
	assert.Equal(t, uint32(2), stakers)

	entries := l.Entries()
	assert.Len(t, entries, 4)
	assert.Equal(t, addr(2), entries[0].Candidate)
	assert.Equal(t, addr(4), entries[3].Candidate)
}
