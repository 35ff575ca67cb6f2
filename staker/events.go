// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/collator/thor"
)

// Event is an observable effect of an engine call.
type Event interface {
	EventName() string
}

// Emitter receives events in the order they happen.
type Emitter interface {
	Emit(ev Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ev Event)

func (f EmitterFunc) Emit(ev Event) { f(ev) }

// NoopEmitter drops every event.
var NoopEmitter Emitter = EmitterFunc(func(Event) {})

type (
	CandidateAdded struct {
		Account thor.Address `json:"account"`
		Deposit uint64       `json:"deposit"`
	}
	CandidateRemoved struct {
		Account   thor.Address `json:"account"`
		Penalized bool         `json:"penalized"`
	}
	CandidateReplaced struct {
		Old     thor.Address `json:"old"`
		New     thor.Address `json:"new"`
		Deposit uint64       `json:"deposit"`
	}
	// CandidateFlagged marks a candidate kept only by the eligible collators floor.
	CandidateFlagged struct {
		Account     thor.Address `json:"account"`
		Stale       bool         `json:"stale"`
		UnderBonded bool         `json:"underBonded"`
	}
	StakeAdded struct {
		Staker    thor.Address `json:"staker"`
		Candidate thor.Address `json:"candidate"`
		Amount    uint64       `json:"amount"`
	}
	StakeRemoved struct {
		Staker    thor.Address `json:"staker"`
		Candidate thor.Address `json:"candidate"`
		Amount    uint64       `json:"amount"`
	}
	UnstakeRequestCreated struct {
		Staker    thor.Address `json:"staker"`
		Candidate thor.Address `json:"candidate"`
		Amount    uint64       `json:"amount"`
		Block     uint32       `json:"block"`
	}
	StakeClaimed struct {
		Staker thor.Address `json:"staker"`
		Amount uint64       `json:"amount"`
	}
	StakingRewardReceived struct {
		Account thor.Address `json:"account"`
		Amount  uint64       `json:"amount"`
	}
	NewInvulnerables struct {
		Invulnerables []thor.Address `json:"invulnerables"`
	}
	InvulnerableAdded struct {
		Account thor.Address `json:"account"`
	}
	InvulnerableRemoved struct {
		Account thor.Address `json:"account"`
	}
	InvalidInvulnerableSkipped struct {
		Account thor.Address `json:"account"`
	}
	NewDesiredCandidates struct {
		Desired uint32 `json:"desired"`
	}
	NewCandidacyBond struct {
		Bond uint64 `json:"bond"`
	}
	NewMinStake struct {
		MinStake uint64 `json:"minStake"`
	}
	AutoCompoundPercentageSet struct {
		Account thor.Address `json:"account"`
		Percent thor.Percent `json:"percent"`
	}
	CollatorRewardPercentageSet struct {
		Percent thor.Percent `json:"percent"`
	}
	ExtraRewardSet struct {
		Amount uint64 `json:"amount"`
	}
	ExtraRewardRemoved   struct{}
	ExtraRewardPotFunded struct {
		Funder thor.Address `json:"funder"`
		Amount uint64       `json:"amount"`
	}
	NewCollators struct {
		Session   uint32         `json:"session"`
		Collators []thor.Address `json:"collators"`
	}
)

func (CandidateAdded) EventName() string              { return "CandidateAdded" }
func (CandidateRemoved) EventName() string            { return "CandidateRemoved" }
func (CandidateReplaced) EventName() string           { return "CandidateReplaced" }
func (CandidateFlagged) EventName() string            { return "CandidateFlagged" }
func (StakeAdded) EventName() string                  { return "StakeAdded" }
func (StakeRemoved) EventName() string                { return "StakeRemoved" }
func (UnstakeRequestCreated) EventName() string       { return "UnstakeRequestCreated" }
func (StakeClaimed) EventName() string                { return "StakeClaimed" }
func (StakingRewardReceived) EventName() string       { return "StakingRewardReceived" }
func (NewInvulnerables) EventName() string            { return "NewInvulnerables" }
func (InvulnerableAdded) EventName() string           { return "InvulnerableAdded" }
func (InvulnerableRemoved) EventName() string         { return "InvulnerableRemoved" }
func (InvalidInvulnerableSkipped) EventName() string  { return "InvalidInvulnerableSkipped" }
func (NewDesiredCandidates) EventName() string        { return "NewDesiredCandidates" }
func (NewCandidacyBond) EventName() string            { return "NewCandidacyBond" }
func (NewMinStake) EventName() string                 { return "NewMinStake" }
func (AutoCompoundPercentageSet) EventName() string   { return "AutoCompoundPercentageSet" }
func (CollatorRewardPercentageSet) EventName() string { return "CollatorRewardPercentageSet" }
func (ExtraRewardSet) EventName() string              { return "ExtraRewardSet" }
func (ExtraRewardRemoved) EventName() string          { return "ExtraRewardRemoved" }
func (ExtraRewardPotFunded) EventName() string        { return "ExtraRewardPotFunded" }
func (NewCollators) EventName() string                { return "NewCollators" }
