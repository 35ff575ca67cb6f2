// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/collator/custodian"
	"github.com/vechain/collator/keys"
	"github.com/vechain/collator/staker/candidates"
	"github.com/vechain/collator/thor"
)

const existentialDeposit = 1

func addr(n byte) thor.Address {
	return thor.BytesToAddress([]byte{n})
}

type recorder struct {
	events []Event
}

func (r *recorder) Emit(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) reset() {
	r.events = nil
}

func (r *recorder) names() []string {
	names := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		names = append(names, ev.EventName())
	}
	return names
}

type testEnv struct {
	t      *testing.T
	block  uint32
	bank   *custodian.Bank
	keys   *keys.MemRegistry
	events *recorder
	params Params
	*Staker
}

func testParams() Params {
	p := DefaultParams()
	p.MaxCandidates = 3
	p.MaxInvulnerables = 2
	p.MaxStakedCandidates = 3
	p.MaxStakers = 4
	return p
}

func testGenesis() Genesis {
	return Genesis{
		CandidacyBond:            10,
		MinStake:                 2,
		DesiredCandidates:        2,
		CollatorRewardPercentage: 20,
	}
}

func newTestEnv(t *testing.T, opts ...func(*Params, *Genesis)) *testEnv {
	params, genesis := testParams(), testGenesis()
	for _, opt := range opts {
		opt(&params, &genesis)
	}

	env := &testEnv{
		t:      t,
		bank:   custodian.NewBank(existentialDeposit),
		keys:   keys.NewMemRegistry(),
		events: &recorder{},
		params: params,
	}
	s, err := New(params, ClockFunc(func() uint32 { return env.block }), env.keys, env.bank, env.events)
	require.NoError(t, err)
	require.NoError(t, s.Initialize(genesis))
	env.Staker = s
	return env
}

// account funds and registers keys for n.
func (e *testEnv) account(n byte, balance uint64) thor.Address {
	who := addr(n)
	e.bank.Mint(who, balance)
	e.keys.Register(who)
	return who
}

func (e *testEnv) candidate(n byte, balance uint64) thor.Address {
	who := e.account(n, balance)
	require.NoError(e.t, e.RegisterAsCandidate(who))
	return who
}

func (e *testEnv) advance(blocks uint32) {
	e.block += blocks
}

func (e *testEnv) mustCandidate(who thor.Address) candidates.Candidate {
	c, ok := e.Candidate(who)
	require.True(e.t, ok, "%v is not a candidate", who)
	return c
}

// fundPot leaves pool spendable in the reward pot.
func (e *testEnv) fundPot(pool uint64) {
	e.bank.Mint(e.Pot(), pool+existentialDeposit)
}

// checkInvariants asserts the structural invariants of the engine state.
func (e *testEnv) checkInvariants() {
	t := e.t
	list := e.Candidates()
	require.LessOrEqual(t, len(list), int(e.params.MaxCandidates))
	for i := 1; i < len(list); i++ {
		require.LessOrEqual(t, list[i-1].Stake, list[i].Stake, "registry out of order")
	}
	for _, c := range list {
		var total uint64
		entries := e.StakersOf(c.Who)
		for _, entry := range entries {
			require.NotZero(t, entry.Amount)
			total += entry.Amount
		}
		require.Equal(t, total, c.Stake, "stake of %v", c.Who)
		require.Equal(t, uint32(len(entries)), c.Stakers, "stakers of %v", c.Who)
		require.Equal(t, e.Stake(c.Who, c.Who), c.Deposit, "deposit of %v", c.Who)
		require.LessOrEqual(t, c.Stakers, e.params.MaxStakers)
	}

	// every held coin is booked either in the ledger or in the unstaking queue
	held := make(map[thor.Address]uint64)
	for _, entry := range e.ledger.Entries() {
		held[entry.Staker] += entry.Amount
	}
	for _, staker := range e.unstaking.Stakers() {
		reqs := e.UnstakingRequests(staker)
		require.LessOrEqual(t, len(reqs), int(e.params.MaxStakedCandidates))
		for i, r := range reqs {
			held[staker] += r.Amount
			if i > 0 {
				require.LessOrEqual(t, reqs[i-1].Block, r.Block)
			}
		}
	}
	for _, acc := range e.bank.Accounts() {
		require.Equal(t, held[acc.Address], acc.Held, "held funds of %v", acc.Address)
		delete(held, acc.Address)
	}
	for who, amount := range held {
		require.Zero(t, amount, "booked funds of %v are not held", who)
	}
	for _, entry := range e.ledger.Entries() {
		require.LessOrEqual(t, e.StakeCount(entry.Staker), e.params.MaxStakedCandidates)
	}
}
