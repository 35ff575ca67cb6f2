// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/collator/custodian"
	"github.com/vechain/collator/keys"
	"github.com/vechain/collator/log"
	"github.com/vechain/collator/metrics"
	"github.com/vechain/collator/staker/candidates"
	"github.com/vechain/collator/staker/invulnerables"
	"github.com/vechain/collator/staker/refunds"
	"github.com/vechain/collator/staker/reverts"
	"github.com/vechain/collator/staker/sessions"
	"github.com/vechain/collator/staker/stakes"
	"github.com/vechain/collator/staker/unstaking"
	"github.com/vechain/collator/thor"
)

var (
	logger = log.WithContext("pkg", "staker")

	metricCandidates   = metrics.LazyLoadGauge("staker_candidates")
	metricCollators    = metrics.LazyLoadGaugeVec("staker_collators", []string{"kind"})
	metricKicked       = metrics.LazyLoadCounterVec("staker_kicked_count", []string{"reason"})
	metricRewardsPaid  = metrics.LazyLoadCounter("staker_rewards_paid")
	metricRefunds      = metrics.LazyLoadCounter("staker_refunded_stakes_count")
	metricTickWork     = metrics.LazyLoadHistogram("staker_tick_work", metrics.BucketWork)
	metricPayoutsLost  = metrics.LazyLoadCounter("staker_dropped_payouts_count")
	metricFailedPayout = metrics.LazyLoadCounter("staker_failed_payouts_count")
)

func SetLogger(l log.Logger) {
	logger = l
}

// Clock supplies the current block number. It must be monotonic.
type Clock interface {
	CurrentBlock() uint32
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() uint32

func (f ClockFunc) CurrentBlock() uint32 { return f() }

// Authorization is the host's verdict on a privileged call.
type Authorization bool

const (
	Authorized Authorization = true
	Rejected   Authorization = false
)

func (a Authorization) check() error {
	if !a {
		return reverts.ErrBadOrigin
	}
	return nil
}

// Staker selects and rewards collators from bonded, delegated stake.
// It is not safe for concurrent use; the host serializes every call.
type Staker struct {
	params Params
	clock  Clock
	keys   keys.Registry
	funds  custodian.Custodian
	events Emitter

	pot      thor.Address
	extraPot thor.Address

	candidates    *candidates.Registry
	ledger        *stakes.Ledger
	unstaking     *unstaking.Queue
	invulnerables *invulnerables.Set
	sessions      *sessions.Accounting
	refunds       *refunds.Queue

	lastAuthored map[thor.Address]uint32
	autoCompound map[thor.Address]thor.Percent
	collators    []thor.Address

	candidacyBond     uint64
	minStake          uint64
	desiredCandidates uint32
	collatorReward    thor.Percent
	extraReward       uint64
}

// New creates an engine with empty state. Params are validated here and an
// invalid set is reported as an error.
func New(
	params Params,
	clock Clock,
	registry keys.Registry,
	funds custodian.Custodian,
	events Emitter,
) (*Staker, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid staker params")
	}
	if events == nil {
		events = NoopEmitter
	}
	return &Staker{
		params: params,
		clock:  clock,
		keys:   registry,
		funds:  funds,
		events: events,

		pot:      params.Pot(),
		extraPot: params.ExtraRewardPot(),

		candidates:    candidates.New(int(params.MaxCandidates)),
		ledger:        stakes.New(),
		unstaking:     unstaking.New(int(params.MaxStakedCandidates)),
		invulnerables: invulnerables.New(int(params.MaxInvulnerables)),
		sessions:      sessions.New(),
		refunds:       refunds.New(),

		lastAuthored: make(map[thor.Address]uint32),
		autoCompound: make(map[thor.Address]thor.Percent),
	}, nil
}

// Initialize applies the genesis configuration.
func (s *Staker) Initialize(g Genesis) error {
	if err := g.Validate(s.params); err != nil {
		return errors.Wrap(err, "invalid staker genesis")
	}
	if err := s.invulnerables.Replace(g.Invulnerables); err != nil {
		return err
	}
	s.candidacyBond = g.CandidacyBond
	s.minStake = g.MinStake
	s.desiredCandidates = g.DesiredCandidates
	s.collatorReward = g.CollatorRewardPercentage
	s.extraReward = g.ExtraReward
	s.collators = s.assemble()

	logger.Info("staker initialized",
		"invulnerables", s.invulnerables.Len(),
		"bond", s.candidacyBond,
		"minStake", s.minStake,
		"desired", s.desiredCandidates,
	)
	return nil
}

//
// Getters - no state change
//

func (s *Staker) Params() Params { return s.params }

// Pot returns the reward pot account.
func (s *Staker) Pot() thor.Address { return s.pot }

// ExtraRewardPot returns the extra reward pot account.
func (s *Staker) ExtraRewardPot() thor.Address { return s.extraPot }

// Candidates lists candidates, lowest stake first.
func (s *Staker) Candidates() []candidates.Candidate { return s.candidates.All() }

// Candidate returns the candidate entry of who.
func (s *Staker) Candidate(who thor.Address) (candidates.Candidate, bool) {
	return s.candidates.Get(who)
}

func (s *Staker) Invulnerables() []thor.Address { return s.invulnerables.All() }

// Collators returns the set chosen at the last rotation.
func (s *Staker) Collators() []thor.Address { return slices.Clone(s.collators) }

// Stake returns the amount staker has on candidate.
func (s *Staker) Stake(candidate, staker thor.Address) uint64 {
	return s.ledger.Get(candidate, staker)
}

// StakesOf lists the stakes held by staker.
func (s *Staker) StakesOf(staker thor.Address) []stakes.Entry { return s.ledger.CandidatesOf(staker) }

// StakersOf lists the stakes on candidate.
func (s *Staker) StakersOf(candidate thor.Address) []stakes.Entry {
	return s.ledger.StakersOf(candidate)
}

// StakeCount returns how many candidates staker has stake on.
func (s *Staker) StakeCount(staker thor.Address) uint32 { return s.ledger.StakeCount(staker) }

// UnstakingRequests lists the pending requests of staker.
func (s *Staker) UnstakingRequests(staker thor.Address) []unstaking.Request {
	return s.unstaking.Requests(staker)
}

// LastAuthoredBlock returns the block after which who is considered stale.
func (s *Staker) LastAuthoredBlock(who thor.Address) (uint32, bool) {
	b, ok := s.lastAuthored[who]
	return b, ok
}

func (s *Staker) AutoCompound(staker thor.Address) thor.Percent { return s.autoCompound[staker] }

func (s *Staker) CandidacyBond() uint64 { return s.candidacyBond }

func (s *Staker) MinStake() uint64 { return s.minStake }

func (s *Staker) DesiredCandidates() uint32 { return s.desiredCandidates }

func (s *Staker) CollatorRewardPercentage() thor.Percent { return s.collatorReward }

func (s *Staker) ExtraReward() uint64 { return s.extraReward }

func (s *Staker) CurrentSession() uint32 { return s.sessions.Current() }

// TotalBlocks returns the block counters of session idx.
func (s *Staker) TotalBlocks(idx uint32) sessions.Totals { return s.sessions.Totals(idx) }

// ProducedBlocks returns the rewardable blocks candidate authored in session idx.
func (s *Staker) ProducedBlocks(idx uint32, candidate thor.Address) uint32 {
	return s.sessions.ProducedBlocks(idx, candidate)
}

// Rewards returns the reward pool of session idx.
func (s *Staker) Rewards(idx uint32) uint64 { return s.sessions.Pool(idx) }

// PendingRefunds lists ex-candidates whose stakers await a refund, oldest first.
func (s *Staker) PendingRefunds() []thor.Address { return s.refunds.All() }

// EligibleCollators counts candidates and invulnerables.
func (s *Staker) EligibleCollators() int {
	return s.candidates.Len() + s.invulnerables.Len()
}

func (s *Staker) emit(ev Event) {
	s.events.Emit(ev)
}

func (s *Staker) now() uint32 {
	return s.clock.CurrentBlock()
}

// checkKeys ensures who has registered block producer credentials.
func (s *Staker) checkKeys(who thor.Address) error {
	id, ok := s.keys.CollatorIDOf(who)
	if !ok {
		return reverts.ErrNoAssociatedCollatorID
	}
	if !s.keys.IsRegistered(id) {
		return reverts.ErrCollatorNotRegistered
	}
	return nil
}
