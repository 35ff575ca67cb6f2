// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package custodian moves funds on behalf of the staking engine.
package custodian

import (
	"github.com/pkg/errors"

	"github.com/vechain/collator/thor"
)

// Mode controls whether a transfer may drop the sender below the minimum balance.
type Mode uint8

const (
	// KeepAlive rejects transfers that would leave the sender below the minimum balance.
	KeepAlive Mode = iota
	// AllowDeath permits the sender to end below the minimum balance.
	AllowDeath
)

var (
	ErrInsufficientBalance = errors.New("insufficient free balance")
	ErrInsufficientHeld    = errors.New("insufficient held balance")
	ErrKeepAlive           = errors.New("transfer would kill sender account")
	ErrBelowMinimum        = errors.New("amount below minimum balance for new account")
)

// Custodian owns balances. Every call is atomic: it either applies fully or returns an error.
type Custodian interface {
	// Hold moves amount from free to held balance.
	Hold(who thor.Address, amount uint64) error
	// Release moves amount from held back to free balance.
	Release(who thor.Address, amount uint64) error
	// Transfer moves free balance between accounts.
	Transfer(from, to thor.Address, amount uint64, mode Mode) error
	// Balance returns the free balance.
	Balance(who thor.Address) uint64
	// MinimumBalance is the existential deposit.
	MinimumBalance() uint64
}
