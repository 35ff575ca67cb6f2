// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/collator/custodian"
	"github.com/vechain/collator/staker/reverts"
	"github.com/vechain/collator/thor"
)

func TestPrivilegedCallsRequireAuthorization(t *testing.T) {
	env := newTestEnv(t)
	who := env.account(1, 100)

	calls := map[string]func() error{
		"SetInvulnerables":            func() error { return env.SetInvulnerables(Rejected, []thor.Address{who}) },
		"AddInvulnerable":             func() error { return env.AddInvulnerable(Rejected, who) },
		"RemoveInvulnerable":          func() error { return env.RemoveInvulnerable(Rejected, who) },
		"SetDesiredCandidates":        func() error { return env.SetDesiredCandidates(Rejected, 1) },
		"SetCandidacyBond":            func() error { return env.SetCandidacyBond(Rejected, 10) },
		"SetMinimumStake":             func() error { return env.SetMinimumStake(Rejected, 1) },
		"SetCollatorRewardPercentage": func() error { return env.SetCollatorRewardPercentage(Rejected, 1) },
		"SetExtraReward":              func() error { return env.SetExtraReward(Rejected, 1) },
		"StopExtraReward":             func() error { return env.StopExtraReward(Rejected) },
	}
	for name, call := range calls {
		err := call()
		assert.ErrorIs(t, err, reverts.ErrBadOrigin, name)
		assert.Equal(t, reverts.KindOrigin, err.(*reverts.ErrRevert).Kind(), name)
	}
	assert.Empty(t, env.events.events)
}

func TestSetInvulnerables(t *testing.T) {
	env := newTestEnv(t)
	a := env.account(5, 0)
	b := env.account(3, 0)
	unregistered := addr(6)

	require.NoError(t, env.SetInvulnerables(Authorized, []thor.Address{a, unregistered, b, a}))
	assert.Equal(t, []thor.Address{b, a}, env.Invulnerables())
	assert.Equal(t, []Event{
		InvalidInvulnerableSkipped{Account: unregistered},
		NewInvulnerables{Invulnerables: []thor.Address{b, a}},
	}, env.events.events)

	c := env.account(7, 0)
	assert.ErrorIs(t, env.SetInvulnerables(Authorized, []thor.Address{a, b, c}), reverts.ErrTooManyInvulnerables)
	assert.ErrorIs(t, env.SetInvulnerables(Authorized, nil), reverts.ErrTooFewEligibleCollators)
	assert.Equal(t, []thor.Address{b, a}, env.Invulnerables())

	env.candidate(1, 100)
	require.NoError(t, env.SetInvulnerables(Authorized, nil))
	assert.Empty(t, env.Invulnerables())
}

func TestSetInvulnerablesDoesNotCountOverlap(t *testing.T) {
	env := newTestEnv(t)
	c := env.candidate(1, 100)

	// c moving over from the candidates leaves the eligible count unchanged
	require.NoError(t, env.SetInvulnerables(Authorized, []thor.Address{c}))
	assert.True(t, env.candidates.Contains(c))

	env.OnSessionRotate(1)
	assert.False(t, env.candidates.Contains(c))
	assert.Equal(t, []thor.Address{c}, env.Collators())
	assert.Equal(t, uint64(100), env.bank.Balance(c))
	assert.Empty(t, env.UnstakingRequests(c))
}

func TestAddInvulnerable(t *testing.T) {
	env := newTestEnv(t)
	c := env.candidate(1, 100)
	env.candidate(2, 100)

	env.events.reset()
	require.NoError(t, env.AddInvulnerable(Authorized, c))
	assert.Equal(t, []thor.Address{c}, env.Invulnerables())
	assert.False(t, env.candidates.Contains(c))
	assert.Equal(t, []string{"StakeRemoved", "CandidateRemoved", "InvulnerableAdded"}, env.events.names())
	assert.Equal(t, CandidateRemoved{Account: c, Penalized: false}, env.events.events[1])
	assert.Equal(t, uint64(100), env.bank.Balance(c))

	assert.ErrorIs(t, env.AddInvulnerable(Authorized, c), reverts.ErrAlreadyInvulnerable)
	assert.ErrorIs(t, env.AddInvulnerable(Authorized, addr(8)), reverts.ErrCollatorNotRegistered)
	assert.ErrorIs(t, env.AddInvulnerable(Authorized, thor.Address{}), reverts.ErrNoAssociatedCollatorID)

	require.NoError(t, env.AddInvulnerable(Authorized, env.account(3, 0)))
	assert.ErrorIs(t, env.AddInvulnerable(Authorized, env.account(4, 0)), reverts.ErrTooManyInvulnerables)
	env.checkInvariants()
}

func TestRemoveInvulnerable(t *testing.T) {
	inv := addr(9)
	env := newTestEnv(t, func(_ *Params, g *Genesis) {
		g.Invulnerables = []thor.Address{inv}
	})

	assert.ErrorIs(t, env.RemoveInvulnerable(Authorized, inv), reverts.ErrTooFewEligibleCollators)

	env.candidate(1, 100)
	assert.ErrorIs(t, env.RemoveInvulnerable(Authorized, addr(8)), reverts.ErrNotInvulnerable)
	require.NoError(t, env.RemoveInvulnerable(Authorized, inv))
	assert.Empty(t, env.Invulnerables())
	assert.Equal(t, InvulnerableRemoved{Account: inv}, env.events.events[len(env.events.events)-1])
}

func TestParameterSetters(t *testing.T) {
	env := newTestEnv(t)

	assert.ErrorIs(t, env.SetDesiredCandidates(Authorized, 6), reverts.ErrTooManyDesiredCandidates)
	require.NoError(t, env.SetDesiredCandidates(Authorized, 5))
	assert.Equal(t, uint32(5), env.DesiredCandidates())

	assert.ErrorIs(t, env.SetCandidacyBond(Authorized, 1), reverts.ErrInvalidCandidacyBond)
	require.NoError(t, env.SetCandidacyBond(Authorized, 2))
	assert.Equal(t, uint64(2), env.CandidacyBond())

	assert.ErrorIs(t, env.SetMinimumStake(Authorized, 3), reverts.ErrInvalidMinStake)
	require.NoError(t, env.SetMinimumStake(Authorized, 1))
	assert.Equal(t, uint64(1), env.MinStake())

	require.NoError(t, env.SetCollatorRewardPercentage(Authorized, 150))
	assert.Equal(t, thor.MaxPercent, env.CollatorRewardPercentage())

	assert.Equal(t, []Event{
		NewDesiredCandidates{Desired: 5},
		NewCandidacyBond{Bond: 2},
		NewMinStake{MinStake: 1},
		CollatorRewardPercentageSet{Percent: 100},
	}, env.events.events)
}

func TestExtraReward(t *testing.T) {
	env := newTestEnv(t)

	assert.ErrorIs(t, env.SetExtraReward(Authorized, 0), reverts.ErrInvalidExtraReward)
	assert.ErrorIs(t, env.StopExtraReward(Authorized), reverts.ErrExtraRewardAlreadyDisabled)

	require.NoError(t, env.SetExtraReward(Authorized, 3))
	assert.Equal(t, uint64(3), env.ExtraReward())
	require.NoError(t, env.StopExtraReward(Authorized))
	assert.Zero(t, env.ExtraReward())
	assert.Equal(t, []string{"ExtraRewardSet", "ExtraRewardRemoved"}, env.events.names())
}

func TestTopUpExtraRewards(t *testing.T) {
	env := newTestEnv(t)
	funder := env.account(1, 100)

	assert.ErrorIs(t, env.TopUpExtraRewards(funder, 0), reverts.ErrInvalidFundingAmount)

	require.NoError(t, env.TopUpExtraRewards(funder, 50))
	assert.Equal(t, uint64(50), env.bank.Balance(env.ExtraRewardPot()))
	assert.Equal(t, ExtraRewardPotFunded{Funder: funder, Amount: 50}, env.events.events[0])

	// the funder is kept alive
	err := env.TopUpExtraRewards(funder, 50)
	assert.True(t, errors.Is(err, custodian.ErrKeepAlive))
	assert.Equal(t, uint64(50), env.bank.Balance(funder))
}
