// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/collator/staker"
	"github.com/vechain/collator/staker/candidates"
	"github.com/vechain/collator/staker/stakes"
	"github.com/vechain/collator/staker/unstaking"
	"github.com/vechain/collator/thor"
)

type Candidate struct {
	Account      thor.Address `json:"account"`
	Deposit      uint64       `json:"deposit"`
	Stake        uint64       `json:"stake"`
	Stakers      uint32       `json:"stakers"`
	LastAuthored *uint32      `json:"lastAuthored"`
}

func convertCandidate(s *staker.Staker, c candidates.Candidate) *Candidate {
	out := &Candidate{
		Account: c.Who,
		Deposit: c.Deposit,
		Stake:   c.Stake,
		Stakers: c.Stakers,
	}
	if b, ok := s.LastAuthoredBlock(c.Who); ok {
		out.LastAuthored = &b
	}
	return out
}

type StakeEntry struct {
	Candidate thor.Address `json:"candidate"`
	Staker    thor.Address `json:"staker"`
	Amount    uint64       `json:"amount"`
}

func convertEntries(entries []stakes.Entry) []StakeEntry {
	out := make([]StakeEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, StakeEntry{Candidate: e.Candidate, Staker: e.Staker, Amount: e.Amount})
	}
	return out
}

type CandidateDetail struct {
	*Candidate
	Entries []StakeEntry `json:"entries"`
}

type StakerInfo struct {
	Staker       thor.Address `json:"staker"`
	StakeCount   uint32       `json:"stakeCount"`
	AutoCompound thor.Percent `json:"autoCompound"`
	Entries      []StakeEntry `json:"entries"`
}

type UnstakeRequest struct {
	Block  uint32 `json:"block"`
	Amount uint64 `json:"amount"`
}

func convertRequests(reqs []unstaking.Request) []UnstakeRequest {
	out := make([]UnstakeRequest, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, UnstakeRequest{Block: r.Block, Amount: r.Amount})
	}
	return out
}

type Session struct {
	Index      uint32 `json:"index"`
	Current    bool   `json:"current"`
	Total      uint32 `json:"total"`
	Rewardable uint32 `json:"rewardable"`
	Pool       uint64 `json:"pool"`
}

type Settings struct {
	staker.Params
	Pot                      thor.Address `json:"pot"`
	ExtraRewardPot           thor.Address `json:"extraRewardPot"`
	CandidacyBond            uint64       `json:"candidacyBond"`
	MinStake                 uint64       `json:"minStake"`
	DesiredCandidates        uint32       `json:"desiredCandidates"`
	CollatorRewardPercentage thor.Percent `json:"collatorRewardPercentage"`
	ExtraReward              uint64       `json:"extraReward"`
	CurrentSession           uint32       `json:"currentSession"`
	PendingRefunds           int          `json:"pendingRefunds"`
}

func convertSettings(s *staker.Staker) *Settings {
	return &Settings{
		Params:                   s.Params(),
		Pot:                      s.Pot(),
		ExtraRewardPot:           s.ExtraRewardPot(),
		CandidacyBond:            s.CandidacyBond(),
		MinStake:                 s.MinStake(),
		DesiredCandidates:        s.DesiredCandidates(),
		CollatorRewardPercentage: s.CollatorRewardPercentage(),
		ExtraReward:              s.ExtraReward(),
		CurrentSession:           s.CurrentSession(),
		PendingRefunds:           len(s.PendingRefunds()),
	}
}
