// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/collator/staker/sessions"
	"github.com/vechain/collator/staker/unstaking"
	"github.com/vechain/collator/thor"
)

func TestOnBlockAuthored(t *testing.T) {
	inv := addr(9)
	env := newTestEnv(t, func(_ *Params, g *Genesis) {
		g.Invulnerables = []thor.Address{inv}
	})
	c := env.candidate(1, 100)

	env.advance(3)
	env.OnBlockAuthored(inv)
	env.OnBlockAuthored(c)
	env.OnBlockAuthored(c)

	assert.Equal(t, sessions.Totals{Total: 3, Rewardable: 2}, env.TotalBlocks(0))
	assert.Equal(t, uint32(2), env.ProducedBlocks(0, c))
	assert.Zero(t, env.ProducedBlocks(0, inv))
	last, _ := env.LastAuthoredBlock(c)
	assert.Equal(t, uint32(3), last)
}

func TestSessionRetention(t *testing.T) {
	env := newTestEnv(t)
	c := env.candidate(1, 100)

	env.OnBlockAuthored(c)
	env.OnSessionStart(1)
	env.OnBlockAuthored(c)
	assert.Equal(t, uint32(1), env.CurrentSession())
	assert.Equal(t, uint32(1), env.TotalBlocks(0).Total)
	assert.Equal(t, uint32(1), env.TotalBlocks(1).Total)

	env.OnSessionStart(2)
	assert.Equal(t, sessions.Totals{}, env.TotalBlocks(0))
	assert.Zero(t, env.sessions.Pending(0))
	assert.Equal(t, uint32(1), env.TotalBlocks(1).Total)
	assert.Equal(t, sessions.Totals{}, env.TotalBlocks(2))
}

func TestOnSessionEndPool(t *testing.T) {
	env := newTestEnv(t)
	env.OnSessionEnd(0)
	assert.Zero(t, env.Rewards(0))

	env.fundPot(9)
	env.OnSessionEnd(0)
	assert.Equal(t, uint64(9), env.Rewards(0))
}

func TestOnSessionEndExtraReward(t *testing.T) {
	env := newTestEnv(t, func(_ *Params, g *Genesis) {
		g.ExtraReward = 3
	})
	c := env.candidate(1, 100)
	for range 4 {
		env.OnBlockAuthored(c)
	}
	env.fundPot(9)
	env.bank.Mint(env.ExtraRewardPot(), 100)

	env.OnSessionEnd(0)
	assert.Equal(t, uint64(21), env.Rewards(0))
	assert.Equal(t, uint64(88), env.bank.Balance(env.ExtraRewardPot()))
}

func TestOnSessionEndExtraRewardUnfunded(t *testing.T) {
	env := newTestEnv(t, func(_ *Params, g *Genesis) {
		g.ExtraReward = 3
	})
	c := env.candidate(1, 100)
	for range 4 {
		env.OnBlockAuthored(c)
	}
	env.fundPot(9)
	env.bank.Mint(env.ExtraRewardPot(), 5)

	env.OnSessionEnd(0)
	assert.Equal(t, uint64(9), env.Rewards(0))
	assert.Equal(t, uint64(5), env.bank.Balance(env.ExtraRewardPot()))
}

func TestKickStaleCandidates(t *testing.T) {
	env := newTestEnv(t)
	c1 := env.candidate(1, 100)
	c2 := env.candidate(2, 100)

	env.advance(20)
	env.events.reset()
	collators := env.OnSessionRotate(1)

	assert.False(t, env.candidates.Contains(c1))
	assert.Equal(t, []unstaking.Request{{Block: 20 + env.params.CollatorUnstakingDelay, Amount: 10}}, env.UnstakingRequests(c1))
	assert.Contains(t, env.events.events, CandidateRemoved{Account: c1, Penalized: true})

	// the last candidate is kept at the eligible floor, but flagged
	assert.True(t, env.candidates.Contains(c2))
	assert.Contains(t, env.events.events, CandidateFlagged{Account: c2, Stale: true})
	assert.Equal(t, []thor.Address{c2}, collators)
	env.checkInvariants()
}

func TestKickKeepsActiveAuthors(t *testing.T) {
	env := newTestEnv(t)
	c1 := env.candidate(1, 100)
	c2 := env.candidate(2, 100)

	env.advance(15)
	env.OnBlockAuthored(c1)
	env.OnBlockAuthored(c2)
	env.advance(5)

	assert.Equal(t, 2, env.kick())
	assert.Equal(t, []thor.Address{c2, c1}, env.assemble())
}

func TestKickUnderBonded(t *testing.T) {
	inv := addr(9)
	env := newTestEnv(t, func(_ *Params, g *Genesis) {
		g.Invulnerables = []thor.Address{inv}
	})
	c1 := env.candidate(1, 100)
	c2 := env.candidate(2, 100)
	c3 := env.candidate(3, 100)
	require.NoError(t, env.AddStake(c3, c3, 15))
	require.NoError(t, env.SetCandidacyBond(Authorized, 20))

	env.events.reset()
	collators := env.OnSessionRotate(1)
	assert.Equal(t, []thor.Address{inv, c3}, collators)
	assert.Contains(t, env.events.events, CandidateRemoved{Account: c1, Penalized: true})
	assert.Contains(t, env.events.events, CandidateRemoved{Account: c2, Penalized: true})
	assert.Len(t, env.UnstakingRequests(c1), 1)
	env.checkInvariants()
}

func TestKickFloorFlagsUnderBonded(t *testing.T) {
	env := newTestEnv(t)
	c1 := env.candidate(1, 100)
	require.NoError(t, env.SetCandidacyBond(Authorized, 20))

	assert.Equal(t, []thor.Address{c1}, env.OnSessionRotate(1))
	assert.Contains(t, env.events.events, CandidateFlagged{Account: c1, UnderBonded: true})
}

func TestAssemble(t *testing.T) {
	inv := addr(9)
	env := newTestEnv(t, func(_ *Params, g *Genesis) {
		g.Invulnerables = []thor.Address{inv}
	})
	assert.Equal(t, []thor.Address{inv}, env.Collators())

	c1 := env.candidate(1, 100)
	c2 := env.candidate(2, 100)
	c3 := env.candidate(3, 100)
	require.NoError(t, env.AddStake(c2, c2, 10))
	require.NoError(t, env.AddStake(c3, c3, 20))

	collators := env.OnSessionRotate(1)
	assert.Equal(t, []thor.Address{inv, c3, c2}, collators)
	assert.Equal(t, collators, env.Collators())
	assert.Equal(t, NewCollators{Session: 1, Collators: collators}, env.events.events[len(env.events.events)-1])
	assert.True(t, env.candidates.Contains(c1))

	require.NoError(t, env.SetDesiredCandidates(Authorized, 0))
	assert.Equal(t, []thor.Address{inv}, env.OnSessionRotate(2))
}
