// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package custodian

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/collator/thor"
)

var _ Custodian = (*Bank)(nil)

// Account is the balance pair of one account.
type Account struct {
	Address thor.Address
	Free    uint64
	Held    uint64
}

// Bank is an in-memory Custodian.
type Bank struct {
	mu     sync.RWMutex
	ed     uint64
	free   map[thor.Address]uint64
	held   map[thor.Address]uint64
	issued uint64
}

// NewBank creates an empty bank with the given existential deposit.
func NewBank(existentialDeposit uint64) *Bank {
	return &Bank{
		ed:   existentialDeposit,
		free: make(map[thor.Address]uint64),
		held: make(map[thor.Address]uint64),
	}
}

// Mint credits new funds to who.
func (b *Bank) Mint(who thor.Address, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.free[who] += amount
	b.issued += amount
}

func (b *Bank) Hold(who thor.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.free[who] < amount {
		return errors.Wrapf(ErrInsufficientBalance, "hold %d from %v", amount, who)
	}
	b.setFree(who, b.free[who]-amount)
	b.held[who] += amount
	return nil
}

func (b *Bank) Release(who thor.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.held[who] < amount {
		return errors.Wrapf(ErrInsufficientHeld, "release %d to %v", amount, who)
	}
	if b.held[who] == amount {
		delete(b.held, who)
	} else {
		b.held[who] -= amount
	}
	b.free[who] += amount
	return nil
}

func (b *Bank) Transfer(from, to thor.Address, amount uint64, mode Mode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if amount == 0 || from == to {
		return nil
	}
	balance := b.free[from]
	if balance < amount {
		return errors.Wrapf(ErrInsufficientBalance, "transfer %d from %v", amount, from)
	}
	if mode == KeepAlive && balance-amount < b.ed && b.held[from] == 0 {
		return errors.Wrapf(ErrKeepAlive, "transfer %d from %v", amount, from)
	}
	if b.free[to]+b.held[to] == 0 && amount < b.ed {
		return errors.Wrapf(ErrBelowMinimum, "transfer %d to %v", amount, to)
	}
	b.setFree(from, balance-amount)
	b.free[to] += amount
	return nil
}

func (b *Bank) Balance(who thor.Address) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.free[who]
}

// Held returns the held balance.
func (b *Bank) Held(who thor.Address) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.held[who]
}

func (b *Bank) MinimumBalance() uint64 {
	return b.ed
}

// TotalIssuance returns the sum of all minted funds.
func (b *Bank) TotalIssuance() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.issued
}

// Accounts lists every non-empty account ordered by address.
func (b *Bank) Accounts() []Account {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := maps.Clone(b.free)
	for addr := range b.held {
		seen[addr] += 0
	}
	addrs := slices.SortedFunc(maps.Keys(seen), thor.Address.Compare)
	accounts := make([]Account, 0, len(addrs))
	for _, addr := range addrs {
		accounts = append(accounts, Account{Address: addr, Free: b.free[addr], Held: b.held[addr]})
	}
	return accounts
}

// Restore replaces all balances.
func (b *Bank) Restore(accounts []Account) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.free = make(map[thor.Address]uint64, len(accounts))
	b.held = make(map[thor.Address]uint64)
	b.issued = 0
	for _, acc := range accounts {
		if acc.Free > 0 {
			b.free[acc.Address] = acc.Free
		}
		if acc.Held > 0 {
			b.held[acc.Address] = acc.Held
		}
		b.issued += acc.Free + acc.Held
	}
}

func (b *Bank) setFree(who thor.Address, v uint64) {
	if v == 0 {
		delete(b.free, who)
		return
	}
	b.free[who] = v
}
