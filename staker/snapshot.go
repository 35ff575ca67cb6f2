// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"maps"
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/collator/kv"
	"github.com/vechain/collator/staker/candidates"
	"github.com/vechain/collator/staker/invulnerables"
	"github.com/vechain/collator/staker/refunds"
	"github.com/vechain/collator/staker/sessions"
	"github.com/vechain/collator/staker/stakes"
	"github.com/vechain/collator/staker/unstaking"
	"github.com/vechain/collator/thor"
)

var snapshotKey = []byte("snapshot")

// Snapshot is the complete engine state in a form that RLP can encode.
type Snapshot struct {
	CandidacyBond     uint64
	MinStake          uint64
	DesiredCandidates uint32
	CollatorReward    thor.Percent
	ExtraReward       uint64

	Invulnerables []thor.Address
	Candidates    []candidates.Candidate
	Stakes        []stakes.Entry
	Unstaking     []StakerRequests
	Refunds       []thor.Address
	LastAuthored  []AccountBlock
	AutoCompound  []AccountPercent
	Collators     []thor.Address

	Session  uint32
	Sessions []sessions.Snapshot
}

type StakerRequests struct {
	Staker   thor.Address
	Requests []unstaking.Request
}

type AccountBlock struct {
	Account thor.Address
	Block   uint32
}

type AccountPercent struct {
	Account thor.Address
	Percent thor.Percent
}

// Snapshot captures the engine state. Map backed state is listed by address.
func (s *Staker) Snapshot() *Snapshot {
	snap := &Snapshot{
		CandidacyBond:     s.candidacyBond,
		MinStake:          s.minStake,
		DesiredCandidates: s.desiredCandidates,
		CollatorReward:    s.collatorReward,
		ExtraReward:       s.extraReward,

		Invulnerables: s.invulnerables.All(),
		Candidates:    s.candidates.All(),
		Stakes:        s.ledger.Entries(),
		Refunds:       s.refunds.All(),
		Collators:     slices.Clone(s.collators),

		Session:  s.sessions.Current(),
		Sessions: s.sessions.Snapshots(),
	}
	for _, staker := range s.unstaking.Stakers() {
		snap.Unstaking = append(snap.Unstaking, StakerRequests{staker, s.unstaking.Requests(staker)})
	}
	for _, who := range slices.SortedFunc(maps.Keys(s.lastAuthored), thor.Address.Compare) {
		snap.LastAuthored = append(snap.LastAuthored, AccountBlock{who, s.lastAuthored[who]})
	}
	for _, who := range slices.SortedFunc(maps.Keys(s.autoCompound), thor.Address.Compare) {
		snap.AutoCompound = append(snap.AutoCompound, AccountPercent{who, s.autoCompound[who]})
	}
	return snap
}

// Restore replaces the engine state with snap. The state is left untouched if
// snap does not fit the params or is inconsistent.
func (s *Staker) Restore(snap *Snapshot) error {
	invs := invulnerables.New(int(s.params.MaxInvulnerables))
	if err := invs.Replace(snap.Invulnerables); err != nil {
		return errors.Wrap(err, "restore invulnerables")
	}
	cands := candidates.New(int(s.params.MaxCandidates))
	if err := cands.Restore(snap.Candidates); err != nil {
		return errors.Wrap(err, "restore candidates")
	}
	ledger := stakes.New()
	for _, e := range snap.Stakes {
		if e.Amount == 0 {
			return errors.Errorf("restore stakes: zero entry %v on %v", e.Staker, e.Candidate)
		}
		if _, created := ledger.Add(e.Candidate, e.Staker, e.Amount); !created {
			return errors.Errorf("restore stakes: duplicate entry %v on %v", e.Staker, e.Candidate)
		}
	}
	for _, c := range cands.All() {
		total, stakers := ledger.Total(c.Who)
		if total != c.Stake || stakers != c.Stakers || ledger.Get(c.Who, c.Who) != c.Deposit {
			return errors.Errorf("restore candidates: %v does not match the ledger", c.Who)
		}
	}
	queue := unstaking.New(int(s.params.MaxStakedCandidates))
	for _, r := range snap.Unstaking {
		if len(r.Requests) > int(s.params.MaxStakedCandidates) {
			return errors.Errorf("restore unstaking: too many requests for %v", r.Staker)
		}
		queue.Restore(r.Staker, r.Requests)
	}
	pending := refunds.New()
	for _, who := range snap.Refunds {
		pending.Add(who)
	}
	accounting := sessions.New()
	accounting.Restore(snap.Session, snap.Sessions)

	s.invulnerables = invs
	s.candidates = cands
	s.ledger = ledger
	s.unstaking = queue
	s.refunds = pending
	s.sessions = accounting

	s.lastAuthored = make(map[thor.Address]uint32, len(snap.LastAuthored))
	for _, e := range snap.LastAuthored {
		s.lastAuthored[e.Account] = e.Block
	}
	s.autoCompound = make(map[thor.Address]thor.Percent, len(snap.AutoCompound))
	for _, e := range snap.AutoCompound {
		s.autoCompound[e.Account] = thor.NewPercent(uint64(e.Percent))
	}
	s.collators = slices.Clone(snap.Collators)

	s.candidacyBond = snap.CandidacyBond
	s.minStake = snap.MinStake
	s.desiredCandidates = snap.DesiredCandidates
	s.collatorReward = thor.NewPercent(uint64(snap.CollatorReward))
	s.extraReward = snap.ExtraReward

	metricCandidates().Set(int64(s.candidates.Len()))
	s.reportCollators()

	logger.Info("staker restored", "session", snap.Session, "candidates", cands.Len(), "stakes", ledger.Len())
	return nil
}

// SaveSnapshot writes snap to w.
func SaveSnapshot(w kv.Putter, snap *Snapshot) error {
	data, err := rlp.EncodeToBytes(snap)
	if err != nil {
		return errors.Wrap(err, "encode staker snapshot")
	}
	return w.Put(snapshotKey, data)
}

// LoadSnapshot reads the snapshot saved in r. It returns nil if there is none.
func LoadSnapshot(r kv.Getter) (*Snapshot, error) {
	data, err := r.Get(snapshotKey)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read staker snapshot")
	}
	var snap Snapshot
	if err := rlp.DecodeBytes(data, &snap); err != nil {
		return nil, errors.Wrap(err, "decode staker snapshot")
	}
	return &snap, nil
}
