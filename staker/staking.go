// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/pkg/errors"

	"github.com/vechain/collator/staker/candidates"
	"github.com/vechain/collator/staker/reverts"
	"github.com/vechain/collator/thor"
)

// AddStake locks amount from staker on candidate.
func (s *Staker) AddStake(staker, candidate thor.Address, amount uint64) error {
	logger.Debug("adding stake", "staker", staker, "candidate", candidate, "amount", amount)

	idx, ok := s.candidates.IndexOf(candidate)
	if !ok {
		return reverts.ErrNotCandidate
	}
	if err := s.lock(idx, staker, amount); err != nil {
		return err
	}
	s.candidates.ReassignPosition(idx)
	return nil
}

// lock validates, holds and books amount without reordering the candidate at idx.
func (s *Staker) lock(idx int, staker thor.Address, amount uint64) error {
	if err := s.checkStake(s.candidates.At(idx), staker, amount); err != nil {
		return err
	}
	if err := s.funds.Hold(staker, amount); err != nil {
		return errors.Wrap(err, "failed to hold stake")
	}
	s.credit(idx, staker, amount)
	return nil
}

func (s *Staker) checkStake(c candidates.Candidate, staker thor.Address, amount uint64) error {
	current := s.ledger.Get(c.Who, staker)
	if current == 0 {
		if s.ledger.StakeCount(staker) >= s.params.MaxStakedCandidates {
			return reverts.ErrTooManyStakedCandidates
		}
		if c.Stakers >= s.params.MaxStakers {
			return reverts.ErrTooManyStakers
		}
	}
	if amount == 0 || current+amount < s.minStake {
		return reverts.ErrInsufficientStake
	}
	return nil
}

// credit books held funds onto the candidate at idx without reordering.
func (s *Staker) credit(idx int, staker thor.Address, amount uint64) {
	if amount == 0 {
		return
	}
	who := s.candidates.At(idx).Who
	_, created := s.ledger.Add(who, staker, amount)
	s.candidates.Modify(idx, func(c *candidates.Candidate) {
		c.Stake += amount
		if created {
			c.Stakers++
		}
		if staker == c.Who {
			c.Deposit += amount
		}
	})
	s.emit(StakeAdded{Staker: staker, Candidate: who, Amount: amount})
}

// UnstakeFrom removes all stake of staker on candidate. Stake on an active
// candidate unlocks after a delay; stake on an ex-candidate is released at once.
func (s *Staker) UnstakeFrom(staker, candidate thor.Address) error {
	logger.Debug("unstaking", "staker", staker, "candidate", candidate)

	if s.ledger.Get(candidate, staker) == 0 {
		return reverts.ErrNothingToUnstake
	}
	idx, active := s.candidates.IndexOf(candidate)
	if active && s.unstaking.Room(staker) == 0 {
		return reverts.ErrTooManyUnstakingRequests
	}

	s.debit(staker, candidate, idx, active)
	if active {
		s.candidates.ReassignPosition(idx)
	}
	return nil
}

// UnstakeAll removes every stake of staker. The candidates touched are reordered
// once at the end.
func (s *Staker) UnstakeAll(staker thor.Address) error {
	logger.Debug("unstaking all", "staker", staker)

	entries := s.ledger.CandidatesOf(staker)
	if len(entries) == 0 {
		return reverts.ErrNothingToUnstake
	}
	penalized := 0
	for _, e := range entries {
		if s.candidates.Contains(e.Candidate) {
			penalized++
		}
	}
	if penalized > s.unstaking.Room(staker) {
		return reverts.ErrTooManyUnstakingRequests
	}

	var touched []thor.Address
	for _, e := range entries {
		idx, active := s.candidates.IndexOf(e.Candidate)
		s.debit(staker, e.Candidate, idx, active)
		if active {
			touched = append(touched, e.Candidate)
		}
	}
	s.candidates.ReassignPositions(touched)

	logger.Info("unstaked all", "staker", staker, "entries", len(entries), "penalized", penalized)
	return nil
}

// debit drops the ledger entry of staker on candidate and settles the funds.
// The candidate at idx, if active, is not reordered.
func (s *Staker) debit(staker, candidate thor.Address, idx int, active bool) {
	amount := s.ledger.Remove(candidate, staker)
	if active {
		s.candidates.Modify(idx, func(c *candidates.Candidate) {
			c.Stake -= amount
			c.Stakers--
			if staker == c.Who {
				c.Deposit -= amount
			}
		})
	}
	s.emit(StakeRemoved{Staker: staker, Candidate: candidate, Amount: amount})
	s.settle(staker, candidate, amount, active)
}

// Claim releases every unstaking request of staker that has unlocked and returns how many.
func (s *Staker) Claim(staker thor.Address) (int, error) {
	n, amount := s.unstaking.Due(staker, s.now())
	if n == 0 {
		return 0, nil
	}
	if err := s.funds.Release(staker, amount); err != nil {
		return 0, errors.Wrap(err, "failed to release claimed stake")
	}
	s.unstaking.Drain(staker, n)
	s.emit(StakeClaimed{Staker: staker, Amount: amount})

	logger.Debug("claimed", "staker", staker, "requests", n, "amount", amount)
	return n, nil
}

// SetAutoCompoundPercentage sets the share of future rewards re-staked for who.
func (s *Staker) SetAutoCompoundPercentage(who thor.Address, pct thor.Percent) {
	pct = thor.NewPercent(uint64(pct))
	if pct.IsZero() {
		delete(s.autoCompound, who)
	} else {
		s.autoCompound[who] = pct
	}
	s.emit(AutoCompoundPercentageSet{Account: who, Percent: pct})
}
