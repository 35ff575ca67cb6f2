// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/pkg/errors"

	"github.com/vechain/collator/thor"
)

// Params are deployment constants. They never change after construction.
type Params struct {
	MaxCandidates          uint32 `yaml:"max-candidates" json:"maxCandidates"`
	MaxInvulnerables       uint32 `yaml:"max-invulnerables" json:"maxInvulnerables"`
	MinEligibleCollators   uint32 `yaml:"min-eligible-collators" json:"minEligibleCollators"`
	KickThreshold          uint32 `yaml:"kick-threshold" json:"kickThreshold"`
	MaxStakedCandidates    uint32 `yaml:"max-staked-candidates" json:"maxStakedCandidates"`
	MaxStakers             uint32 `yaml:"max-stakers" json:"maxStakers"`
	CollatorUnstakingDelay uint32 `yaml:"collator-unstaking-delay" json:"collatorUnstakingDelay"`
	UserUnstakingDelay     uint32 `yaml:"user-unstaking-delay" json:"userUnstakingDelay"`
	PotID                  string `yaml:"pot-id" json:"potId"`
	ExtraRewardPotID       string `yaml:"extra-reward-pot-id" json:"extraRewardPotId"`
}

// DefaultParams returns the reference deployment constants.
func DefaultParams() Params {
	return Params{
		MaxCandidates:          20,
		MaxInvulnerables:       20,
		MinEligibleCollators:   1,
		KickThreshold:          10,
		MaxStakedCandidates:    16,
		MaxStakers:             64,
		CollatorUnstakingDelay: 5,
		UserUnstakingDelay:     2,
		PotID:                  "collator/pot",
		ExtraRewardPotID:       "collator/extra-reward-pot",
	}
}

// Pot is the account rewards are paid from.
func (p Params) Pot() thor.Address {
	return thor.DeriveAccount(p.PotID)
}

// ExtraRewardPot is the account funding the flat per-block reward.
func (p Params) ExtraRewardPot() thor.Address {
	return thor.DeriveAccount(p.ExtraRewardPotID)
}

// Validate checks the integrity of the constants.
func (p Params) Validate() error {
	switch {
	case p.MinEligibleCollators == 0:
		return errors.New("min eligible collators must be greater than 0")
	case uint64(p.MaxInvulnerables)+uint64(p.MaxCandidates) < uint64(p.MinEligibleCollators):
		return errors.New("max invulnerables plus max candidates must reach min eligible collators")
	case p.MaxCandidates < p.MaxStakedCandidates:
		return errors.New("max candidates must not be below max staked candidates")
	case p.MaxStakedCandidates == 0:
		return errors.New("max staked candidates must be greater than 0")
	case p.MaxStakers == 0:
		return errors.New("max stakers must be greater than 0")
	case p.PotID == "" || p.ExtraRewardPotID == "":
		return errors.New("pot ids must not be empty")
	case p.PotID == p.ExtraRewardPotID:
		return errors.New("reward pot and extra reward pot must differ")
	}
	return nil
}

// Genesis is the initial value of the adjustable parameters.
type Genesis struct {
	Invulnerables            []thor.Address `yaml:"invulnerables" json:"invulnerables"`
	CandidacyBond            uint64         `yaml:"candidacy-bond" json:"candidacyBond"`
	MinStake                 uint64         `yaml:"min-stake" json:"minStake"`
	DesiredCandidates        uint32         `yaml:"desired-candidates" json:"desiredCandidates"`
	CollatorRewardPercentage thor.Percent   `yaml:"collator-reward-percentage" json:"collatorRewardPercentage"`
	ExtraReward              uint64         `yaml:"extra-reward" json:"extraReward"`
}

// Validate checks g against p.
func (g Genesis) Validate(p Params) error {
	seen := make(map[thor.Address]struct{}, len(g.Invulnerables))
	for _, who := range g.Invulnerables {
		if _, dup := seen[who]; dup {
			return errors.Errorf("duplicate invulnerable %v", who)
		}
		seen[who] = struct{}{}
	}
	switch {
	case len(g.Invulnerables) > int(p.MaxInvulnerables):
		return errors.New("genesis invulnerables are more than max invulnerables")
	case g.DesiredCandidates > p.MaxCandidates:
		return errors.New("genesis desired candidates are more than max candidates")
	case g.MinStake > g.CandidacyBond:
		return errors.New("min stake must not exceed candidacy bond")
	case g.CollatorRewardPercentage > thor.MaxPercent:
		return errors.New("collator reward percentage above 100%")
	}
	return nil
}
