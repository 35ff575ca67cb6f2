// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package invulnerables

import (
	"slices"

	"github.com/vechain/collator/staker/reverts"
	"github.com/vechain/collator/thor"
)

// Set is a bounded set of accounts kept in ascending address order.
type Set struct {
	list []thor.Address
	max  int
}

func New(maxInvulnerables int) *Set {
	return &Set{max: maxInvulnerables}
}

func (s *Set) Len() int { return len(s.list) }

func (s *Set) Cap() int { return s.max }

// All returns a copy of the members.
func (s *Set) All() []thor.Address {
	return slices.Clone(s.list)
}

func (s *Set) Contains(who thor.Address) bool {
	_, ok := slices.BinarySearchFunc(s.list, who, thor.Address.Compare)
	return ok
}

func (s *Set) Add(who thor.Address) error {
	pos, ok := slices.BinarySearchFunc(s.list, who, thor.Address.Compare)
	if ok {
		return reverts.ErrAlreadyInvulnerable
	}
	if len(s.list) >= s.max {
		return reverts.ErrTooManyInvulnerables
	}
	s.list = slices.Insert(s.list, pos, who)
	return nil
}

func (s *Set) Remove(who thor.Address) error {
	pos, ok := slices.BinarySearchFunc(s.list, who, thor.Address.Compare)
	if !ok {
		return reverts.ErrNotInvulnerable
	}
	s.list = slices.Delete(s.list, pos, pos+1)
	return nil
}

// Replace sets the members to accounts, sorted with duplicates dropped.
func (s *Set) Replace(accounts []thor.Address) error {
	list := slices.Clone(accounts)
	slices.SortFunc(list, thor.Address.Compare)
	list = slices.Compact(list)
	if len(list) > s.max {
		return reverts.ErrTooManyInvulnerables
	}
	s.list = list
	return nil
}
