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

// RegisterAsCandidate bonds the current candidacy bond from who and lists it as a candidate.
func (s *Staker) RegisterAsCandidate(who thor.Address) error {
	logger.Debug("registering candidate", "who", who, "bond", s.candidacyBond)

	if s.candidates.IsFull() {
		return reverts.ErrTooManyCandidates
	}
	if err := s.checkCandidacy(who); err != nil {
		return err
	}
	if err := s.checkSelfStake(who); err != nil {
		return err
	}
	if err := s.funds.Hold(who, s.candidacyBond); err != nil {
		return errors.Wrap(err, "failed to hold candidacy bond")
	}

	s.enroll(who, s.candidacyBond)

	logger.Info("registered candidate", "who", who)
	return nil
}

// LeaveIntent removes who from the candidates. Its own stake unlocks after the collator delay.
func (s *Staker) LeaveIntent(who thor.Address) error {
	logger.Debug("leave intent", "who", who)

	if s.EligibleCollators() <= int(s.params.MinEligibleCollators) {
		return reverts.ErrTooFewEligibleCollators
	}
	idx, ok := s.candidates.IndexOf(who)
	if !ok {
		return reverts.ErrNotCandidate
	}
	if s.candidates.At(idx).Deposit > 0 && s.unstaking.Room(who) == 0 {
		return reverts.ErrTooManyUnstakingRequests
	}

	s.removeCandidate(idx, true)

	logger.Info("candidate left", "who", who)
	return nil
}

// TakeCandidateSlot replaces the lowest ranked candidate when the list is full.
// stake is bonded from who and must exceed the stake of the replaced candidate.
func (s *Staker) TakeCandidateSlot(who thor.Address, stake uint64) error {
	logger.Debug("taking candidate slot", "who", who, "stake", stake)

	if s.invulnerables.Contains(who) {
		return reverts.ErrAlreadyInvulnerable
	}
	if stake < s.candidacyBond {
		return reverts.ErrInsufficientBond
	}
	if err := s.checkCandidacy(who); err != nil {
		return err
	}
	if !s.candidates.IsFull() {
		return reverts.ErrCanRegister
	}
	victim, _ := s.candidates.Lowest()
	if stake <= victim.Stake {
		return reverts.ErrInsufficientBond
	}
	if err := s.checkSelfStake(who); err != nil {
		return err
	}
	if err := s.funds.Hold(who, stake); err != nil {
		return errors.Wrap(err, "failed to hold stake")
	}

	s.removeCandidate(0, true)
	idx := s.enroll(who, s.candidacyBond)
	if rest := stake - s.candidacyBond; rest > 0 {
		s.credit(idx, who, rest)
		s.candidates.ReassignPosition(idx)
	}
	s.emit(CandidateReplaced{Old: victim.Who, New: who, Deposit: stake})

	logger.Info("candidate slot taken", "old", victim.Who, "new", who)
	return nil
}

// checkCandidacy validates who may become a candidate, capacity aside.
func (s *Staker) checkCandidacy(who thor.Address) error {
	if s.invulnerables.Contains(who) {
		return reverts.ErrAlreadyInvulnerable
	}
	if err := s.checkKeys(who); err != nil {
		return err
	}
	if s.candidates.Contains(who) {
		return reverts.ErrAlreadyCandidate
	}
	return nil
}

// checkSelfStake validates that who can open a stake entry on itself, including any
// residual stakers left from an earlier candidacy.
func (s *Staker) checkSelfStake(who thor.Address) error {
	if s.ledger.Get(who, who) > 0 {
		return nil
	}
	if s.ledger.StakeCount(who) >= s.params.MaxStakedCandidates {
		return reverts.ErrTooManyStakedCandidates
	}
	if _, stakers := s.ledger.Total(who); stakers >= s.params.MaxStakers {
		return reverts.ErrTooManyStakers
	}
	return nil
}

// enroll lists who with a bond already held and returns its index.
// Stake left by stakers from an earlier candidacy is counted again.
func (s *Staker) enroll(who thor.Address, bond uint64) int {
	if s.refunds.Remove(who) {
		logger.Debug("refund cancelled by re-registration", "who", who)
	}
	residual, stakers := s.ledger.Total(who)

	idx, err := s.candidates.Insert(candidates.Candidate{
		Who:     who,
		Deposit: s.ledger.Get(who, who),
		Stake:   residual,
		Stakers: stakers,
	})
	if err != nil {
		// capacity and membership were validated by the caller
		panic(errors.Wrap(err, "enroll"))
	}
	s.lastAuthored[who] = s.now() + s.params.KickThreshold

	s.credit(idx, who, bond)
	idx = s.candidates.ReassignPosition(idx)
	s.emit(CandidateAdded{Account: who, Deposit: bond})
	metricCandidates().Set(int64(s.candidates.Len()))
	return idx
}

// removeCandidate delists the candidate at idx. Its self stake is queued for
// the collator delay when penalized and released otherwise. Remaining stakers
// are refunded by the sweep.
func (s *Staker) removeCandidate(idx int, penalized bool) candidates.Candidate {
	c := s.candidates.RemoveAt(idx)
	delete(s.lastAuthored, c.Who)

	if self := s.ledger.Remove(c.Who, c.Who); self > 0 {
		s.emit(StakeRemoved{Staker: c.Who, Candidate: c.Who, Amount: self})
		s.settle(c.Who, c.Who, self, penalized)
	}
	if len(s.ledger.StakersOf(c.Who)) > 0 {
		s.refunds.Add(c.Who)
	}

	s.emit(CandidateRemoved{Account: c.Who, Penalized: penalized})
	metricCandidates().Set(int64(s.candidates.Len()))
	return c
}

// settle hands back stake that left the ledger. Penalized stake waits in the
// unstaking queue; the rest is released at once.
func (s *Staker) settle(staker, candidate thor.Address, amount uint64, penalized bool) {
	if penalized {
		delay := s.params.UserUnstakingDelay
		if staker == candidate {
			delay = s.params.CollatorUnstakingDelay
		}
		block := s.now() + delay
		err := s.unstaking.Enqueue(staker, block, amount)
		if err == nil {
			s.emit(UnstakeRequestCreated{Staker: staker, Candidate: candidate, Amount: amount, Block: block})
			return
		}
		logger.Warn("unstaking queue full, releasing at once", "staker", staker, "amount", amount)
	}
	if err := s.funds.Release(staker, amount); err != nil {
		logger.Error("failed to release stake", "staker", staker, "amount", amount, "err", err)
	}
}
