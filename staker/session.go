// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"slices"

	"github.com/vechain/collator/custodian"
	"github.com/vechain/collator/thor"
)

// OnBlockAuthored books a block authored by author in the current session.
func (s *Staker) OnBlockAuthored(author thor.Address) {
	s.lastAuthored[author] = s.now()
	s.sessions.RecordBlock(author, !s.invulnerables.Contains(author))
}

// OnSessionStart makes idx the current session. Payouts of sessions older than
// idx-1 that were never disbursed are dropped.
func (s *Staker) OnSessionStart(idx uint32) {
	if dropped := s.sessions.Start(idx); dropped > 0 {
		logger.Warn("dropped undisbursed payouts", "session", idx, "count", dropped)
		metricPayoutsLost().Add(int64(dropped))
	}
	logger.Debug("session started", "session", idx)
}

// OnSessionEnd tops up the pot with the extra reward and freezes the reward pool of idx.
func (s *Staker) OnSessionEnd(idx uint32) {
	totals := s.sessions.Totals(idx)
	if s.extraReward > 0 && totals.Total > 0 {
		amount := thor.MulDivFloor(s.extraReward, uint64(totals.Total), 1)
		if err := s.funds.Transfer(s.extraPot, s.pot, amount, custodian.KeepAlive); err != nil {
			logger.Warn("failed to pay extra reward", "session", idx, "amount", amount, "err", err)
		}
	}

	var pool uint64
	if balance, ed := s.funds.Balance(s.pot), s.funds.MinimumBalance(); balance > ed {
		pool = balance - ed
	}
	s.sessions.SetPool(idx, pool)

	logger.Debug("session ended", "session", idx, "blocks", totals.Total, "rewardable", totals.Rewardable, "pool", pool)
}

// OnSessionRotate evicts candidates and returns the collators of session idx.
func (s *Staker) OnSessionRotate(idx uint32) []thor.Address {
	before := s.candidates.Len()
	retained := s.kick()

	s.collators = s.assemble()
	s.emit(NewCollators{Session: idx, Collators: slices.Clone(s.collators)})
	s.reportCollators()

	logger.Info("new collators", "session", idx, "collators", len(s.collators), "kicked", before-retained)
	return slices.Clone(s.collators)
}

// kick evicts candidates that are invulnerable, stale or under-bonded and
// returns how many were retained. Candidates are never evicted below the
// eligible collators floor.
func (s *Staker) kick() int {
	now := s.now()
	retained := 0
	for _, c := range s.candidates.All() {
		idx, _ := s.candidates.IndexOf(c.Who)

		if s.invulnerables.Contains(c.Who) {
			s.removeCandidate(idx, false)
			metricKicked().AddWithLabel(1, map[string]string{"reason": "invulnerable"})
			continue
		}

		last := s.lastAuthored[c.Who]
		stale := now >= last && now-last >= s.params.KickThreshold
		underBonded := c.Stake < s.candidacyBond

		if s.EligibleCollators() <= int(s.params.MinEligibleCollators) {
			if stale || underBonded {
				logger.Warn("retaining candidate at eligible floor", "who", c.Who, "stale", stale, "underBonded", underBonded)
				s.emit(CandidateFlagged{Account: c.Who, Stale: stale, UnderBonded: underBonded})
			}
			retained++
			continue
		}

		switch {
		case stale:
			metricKicked().AddWithLabel(1, map[string]string{"reason": "stale"})
		case underBonded:
			metricKicked().AddWithLabel(1, map[string]string{"reason": "bond"})
		default:
			retained++
			continue
		}
		logger.Info("kicking candidate", "who", c.Who, "stale", stale, "underBonded", underBonded)
		s.removeCandidate(idx, true)
	}
	return retained
}

// assemble lists the invulnerables followed by the best funded candidates.
func (s *Staker) assemble() []thor.Address {
	out := s.invulnerables.All()
	return append(out, s.candidates.Top(int(s.desiredCandidates))...)
}

func (s *Staker) reportCollators() {
	invulnerables := 0
	for _, who := range s.collators {
		if s.invulnerables.Contains(who) {
			invulnerables++
		}
	}
	metricCollators().SetWithLabel(int64(invulnerables), map[string]string{"kind": "invulnerable"})
	metricCollators().SetWithLabel(int64(len(s.collators)-invulnerables), map[string]string{"kind": "candidate"})
}
