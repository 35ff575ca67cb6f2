// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/pkg/errors"

	"github.com/vechain/collator/thor"
)

// Stake is a genesis stake of an account on a candidate.
type Stake struct {
	Candidate thor.Address `yaml:"candidate" json:"candidate"`
	Amount    uint64       `yaml:"amount" json:"amount"`
}

// Account is a funded genesis account.
type Account struct {
	Address      thor.Address `yaml:"address" json:"address"`
	Balance      uint64       `yaml:"balance" json:"balance"`
	Keys         bool         `yaml:"keys" json:"keys"`
	Candidate    bool         `yaml:"candidate" json:"candidate"`
	Stakes       []Stake      `yaml:"stakes" json:"stakes"`
	AutoCompound thor.Percent `yaml:"auto-compound" json:"autoCompound"`
}

// Genesis is the initial state of a simulated chain.
type Genesis struct {
	ExistentialDeposit uint64    `yaml:"existential-deposit" json:"existentialDeposit"`
	PotBalance         uint64    `yaml:"pot-balance" json:"potBalance"`
	ExtraPotBalance    uint64    `yaml:"extra-reward-pot-balance" json:"extraRewardPotBalance"`
	Accounts           []Account `yaml:"accounts" json:"accounts"`
}

// Validate checks the accounts are unique and stake only on genesis candidates.
func (g *Genesis) Validate() error {
	seen := make(map[thor.Address]*Account, len(g.Accounts))
	for i := range g.Accounts {
		acc := &g.Accounts[i]
		if acc.Address.IsZero() {
			return errors.New("genesis account with zero address")
		}
		if _, dup := seen[acc.Address]; dup {
			return errors.Errorf("duplicate genesis account %v", acc.Address)
		}
		if acc.Candidate && !acc.Keys {
			return errors.Errorf("genesis candidate %v has no keys", acc.Address)
		}
		seen[acc.Address] = acc
	}
	for _, acc := range g.Accounts {
		for _, st := range acc.Stakes {
			if c, ok := seen[st.Candidate]; !ok || !c.Candidate {
				return errors.Errorf("%v stakes on %v which is not a genesis candidate", acc.Address, st.Candidate)
			}
		}
	}
	return nil
}
