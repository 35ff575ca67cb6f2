// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/collator/custodian"
	"github.com/vechain/collator/staker/candidates"
	"github.com/vechain/collator/staker/sessions"
	"github.com/vechain/collator/thor"
)

// Work units charged by OnSchedulingTick.
const (
	WeightRewardStep uint64 = 10_000
	WeightRefundStep uint64 = 10_000
	WeightPerStaker  uint64 = 1_000
)

// stepCost is the worst case cost of a step touching up to MaxStakers entries.
func (s *Staker) stepCost(base uint64) uint64 {
	return base + WeightPerStaker*uint64(s.params.MaxStakers)
}

// OnSchedulingTick runs at most one reward payout of the previous session and,
// if the budget allows, at most one ex-candidate refund. It returns the work done.
func (s *Staker) OnSchedulingTick(budget uint64) uint64 {
	var used uint64
	if budget >= s.stepCost(WeightRewardStep) {
		used += s.rewardStep()
	}
	if budget-used >= s.stepCost(WeightRefundStep) {
		used += s.refundStep()
	}
	if used > 0 {
		metricTickWork().Observe(int64(used))
	}
	return used
}

// rewardStep pays one candidate of the previous session.
func (s *Staker) rewardStep() uint64 {
	current := s.sessions.Current()
	if current == 0 {
		return 0
	}
	prev := current - 1
	p, ok := s.sessions.PopProduced(prev)
	if !ok {
		return 0
	}
	idx, ok := s.candidates.IndexOf(p.Candidate)
	if !ok {
		logger.Debug("dropping payout of former candidate", "who", p.Candidate, "session", prev)
		return WeightRewardStep
	}
	totals := s.sessions.Totals(prev)
	c := s.candidates.At(idx)
	if totals.Rewardable == 0 || c.Stake == 0 {
		return WeightRewardStep
	}

	paid := s.payout(idx, c, p, totals, s.sessions.Pool(prev))
	s.candidates.ReassignPosition(idx)
	return WeightRewardStep + WeightPerStaker*uint64(paid)
}

// payout splits the share of c in pool between the collator and its stakers,
// re-staking the auto-compounded part. The candidate at idx is not reordered.
// It returns the number of stakers visited.
func (s *Staker) payout(idx int, c candidates.Candidate, p sessions.Produced, totals sessions.Totals, pool uint64) int {
	share := thor.MulDivFloor(pool, uint64(p.Blocks), uint64(totals.Rewardable))
	collatorShare := s.collatorReward.MulFloor(share)
	stakersShare := share - collatorShare

	s.reward(c.Who, collatorShare)

	entries := s.ledger.StakersOf(c.Who)
	for _, e := range entries {
		amount := thor.MulDivFloor(e.Amount, stakersShare, c.Stake)
		if !s.reward(e.Staker, amount) {
			continue
		}
		pct := s.autoCompound[e.Staker]
		if pct.IsZero() {
			continue
		}
		if compound := pct.MulFloor(amount); compound > 0 {
			if err := s.lock(idx, e.Staker, compound); err != nil {
				logger.Warn("failed to compound reward", "staker", e.Staker, "candidate", c.Who, "amount", compound, "err", err)
			}
		}
	}

	logger.Debug("rewards paid", "candidate", c.Who, "share", share, "collator", collatorShare, "stakers", len(entries))
	return len(entries)
}

// reward pays amount from the pot and reports whether it was paid.
func (s *Staker) reward(who thor.Address, amount uint64) bool {
	if amount == 0 {
		return false
	}
	if err := s.funds.Transfer(s.pot, who, amount, custodian.KeepAlive); err != nil {
		logger.Warn("failed to pay reward", "who", who, "amount", amount, "err", err)
		metricFailedPayout().Add(1)
		return false
	}
	s.emit(StakingRewardReceived{Account: who, Amount: amount})
	metricRewardsPaid().Add(int64(amount))
	return true
}

// refundStep releases every stake left on the oldest ex-candidate.
func (s *Staker) refundStep() uint64 {
	who, ok := s.refunds.Pop()
	if !ok {
		return 0
	}
	entries := s.ledger.StakersOf(who)
	for _, e := range entries {
		amount := s.ledger.Remove(who, e.Staker)
		s.emit(StakeRemoved{Staker: e.Staker, Candidate: who, Amount: amount})
		if err := s.funds.Release(e.Staker, amount); err != nil {
			logger.Error("failed to refund stake", "staker", e.Staker, "candidate", who, "amount", amount, "err", err)
		}
	}
	metricRefunds().Add(int64(len(entries)))

	logger.Debug("refunded ex-candidate stakers", "candidate", who, "stakers", len(entries))
	return WeightRefundStep + WeightPerStaker*uint64(len(entries))
}
