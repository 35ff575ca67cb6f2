// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/collator/custodian"
	"github.com/vechain/collator/staker/reverts"
	"github.com/vechain/collator/thor"
)

// SetInvulnerables replaces the invulnerable set. Accounts without registered
// keys are skipped. Candidates that become invulnerable are delisted at the next rotation.
func (s *Staker) SetInvulnerables(auth Authorization, accounts []thor.Address) error {
	if err := auth.check(); err != nil {
		return err
	}

	var (
		accepted = make([]thor.Address, 0, len(accounts))
		skipped  []thor.Address
	)
	for _, who := range accounts {
		if err := s.checkKeys(who); err != nil {
			skipped = append(skipped, who)
			continue
		}
		accepted = append(accepted, who)
	}
	slices.SortFunc(accepted, thor.Address.Compare)
	accepted = slices.Compact(accepted)
	if len(accepted) > int(s.params.MaxInvulnerables) {
		return reverts.ErrTooManyInvulnerables
	}

	eligible := len(accepted)
	for _, c := range s.candidates.All() {
		if _, found := slices.BinarySearchFunc(accepted, c.Who, thor.Address.Compare); !found {
			eligible++
		}
	}
	if eligible < int(s.params.MinEligibleCollators) {
		return reverts.ErrTooFewEligibleCollators
	}

	if err := s.invulnerables.Replace(accepted); err != nil {
		return err
	}
	for _, who := range skipped {
		logger.Warn("skipping invulnerable without keys", "who", who)
		s.emit(InvalidInvulnerableSkipped{Account: who})
	}
	s.emit(NewInvulnerables{Invulnerables: s.invulnerables.All()})

	logger.Info("invulnerables set", "count", len(accepted), "skipped", len(skipped))
	return nil
}

// AddInvulnerable adds who to the invulnerables, delisting it as a candidate without penalty.
func (s *Staker) AddInvulnerable(auth Authorization, who thor.Address) error {
	if err := auth.check(); err != nil {
		return err
	}
	if err := s.checkKeys(who); err != nil {
		return err
	}
	if err := s.invulnerables.Add(who); err != nil {
		return err
	}
	if idx, ok := s.candidates.IndexOf(who); ok {
		s.removeCandidate(idx, false)
	}
	s.emit(InvulnerableAdded{Account: who})

	logger.Info("invulnerable added", "who", who)
	return nil
}

// RemoveInvulnerable drops who from the invulnerables.
func (s *Staker) RemoveInvulnerable(auth Authorization, who thor.Address) error {
	if err := auth.check(); err != nil {
		return err
	}
	if s.EligibleCollators() <= int(s.params.MinEligibleCollators) {
		return reverts.ErrTooFewEligibleCollators
	}
	if err := s.invulnerables.Remove(who); err != nil {
		return err
	}
	s.emit(InvulnerableRemoved{Account: who})

	logger.Info("invulnerable removed", "who", who)
	return nil
}

// SetDesiredCandidates sets how many candidates join the invulnerables as collators.
func (s *Staker) SetDesiredCandidates(auth Authorization, desired uint32) error {
	if err := auth.check(); err != nil {
		return err
	}
	if uint64(desired) > uint64(s.params.MaxCandidates)+uint64(s.params.MaxInvulnerables) {
		return reverts.ErrTooManyDesiredCandidates
	}
	if desired > s.params.MaxCandidates {
		logger.Warn("desired candidates above max candidates", "desired", desired, "max", s.params.MaxCandidates)
	}
	s.desiredCandidates = desired
	s.emit(NewDesiredCandidates{Desired: desired})
	return nil
}

// SetCandidacyBond sets the bond required to register. Candidates whose stake
// falls below it are evicted at the next rotation.
func (s *Staker) SetCandidacyBond(auth Authorization, bond uint64) error {
	if err := auth.check(); err != nil {
		return err
	}
	if bond < s.minStake {
		return reverts.ErrInvalidCandidacyBond
	}
	s.candidacyBond = bond
	s.emit(NewCandidacyBond{Bond: bond})
	return nil
}

// SetMinimumStake sets the smallest stake entry a staker may hold.
func (s *Staker) SetMinimumStake(auth Authorization, minStake uint64) error {
	if err := auth.check(); err != nil {
		return err
	}
	if minStake > s.candidacyBond {
		return reverts.ErrInvalidMinStake
	}
	s.minStake = minStake
	s.emit(NewMinStake{MinStake: minStake})
	return nil
}

// SetCollatorRewardPercentage sets the share of a payout kept by the collator.
func (s *Staker) SetCollatorRewardPercentage(auth Authorization, pct thor.Percent) error {
	if err := auth.check(); err != nil {
		return err
	}
	pct = thor.NewPercent(uint64(pct))
	s.collatorReward = pct
	s.emit(CollatorRewardPercentageSet{Percent: pct})
	return nil
}

// SetExtraReward sets the flat per-block reward drawn from the extra reward pot.
func (s *Staker) SetExtraReward(auth Authorization, amount uint64) error {
	if err := auth.check(); err != nil {
		return err
	}
	if amount == 0 {
		return reverts.ErrInvalidExtraReward
	}
	s.extraReward = amount
	s.emit(ExtraRewardSet{Amount: amount})
	return nil
}

// StopExtraReward disables the flat per-block reward.
func (s *Staker) StopExtraReward(auth Authorization) error {
	if err := auth.check(); err != nil {
		return err
	}
	if s.extraReward == 0 {
		return reverts.ErrExtraRewardAlreadyDisabled
	}
	s.extraReward = 0
	s.emit(ExtraRewardRemoved{})
	return nil
}

// TopUpExtraRewards moves amount from who into the extra reward pot.
func (s *Staker) TopUpExtraRewards(who thor.Address, amount uint64) error {
	if amount == 0 {
		return reverts.ErrInvalidFundingAmount
	}
	if err := s.funds.Transfer(who, s.extraPot, amount, custodian.KeepAlive); err != nil {
		return errors.Wrap(err, "failed to fund extra reward pot")
	}
	s.emit(ExtraRewardPotFunded{Funder: who, Amount: amount})
	return nil
}
