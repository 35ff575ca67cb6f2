// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind groups reverts by the rule they enforce.
type Kind uint8

const (
	KindCapacity Kind = iota + 1
	KindState
	KindEligibility
	KindEconomic
	KindOrigin
)

func (k Kind) String() string {
	switch k {
	case KindCapacity:
		return "capacity"
	case KindState:
		return "state"
	case KindEligibility:
		return "eligibility"
	case KindEconomic:
		return "economic"
	case KindOrigin:
		return "origin"
	default:
		return "unknown"
	}
}

// ErrRevert is a rejected call. State is untouched when one is returned.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

var (
	ErrTooManyCandidates        = New(KindCapacity, "too many candidates")
	ErrTooManyInvulnerables     = New(KindCapacity, "too many invulnerables")
	ErrTooManyStakedCandidates  = New(KindCapacity, "too many staked candidates")
	ErrTooManyStakers           = New(KindCapacity, "too many stakers")
	ErrTooManyUnstakingRequests = New(KindCapacity, "too many unstaking requests")
	ErrTooManyDesiredCandidates = New(KindCapacity, "too many desired candidates")

	ErrAlreadyCandidate           = New(KindState, "already a candidate")
	ErrNotCandidate               = New(KindState, "not a candidate")
	ErrAlreadyInvulnerable        = New(KindState, "already invulnerable")
	ErrNotInvulnerable            = New(KindState, "not invulnerable")
	ErrNothingToUnstake           = New(KindState, "nothing to unstake")
	ErrCanRegister                = New(KindState, "candidate list not full, register instead")
	ErrExtraRewardAlreadyDisabled = New(KindState, "extra reward already disabled")

	ErrNoAssociatedCollatorID  = New(KindEligibility, "no associated collator id")
	ErrCollatorNotRegistered   = New(KindEligibility, "collator keys not registered")
	ErrTooFewEligibleCollators = New(KindEligibility, "too few eligible collators")

	ErrInsufficientStake    = New(KindEconomic, "insufficient stake")
	ErrInsufficientBond     = New(KindEconomic, "insufficient bond")
	ErrInvalidMinStake      = New(KindEconomic, "invalid minimum stake")
	ErrInvalidCandidacyBond = New(KindEconomic, "invalid candidacy bond")
	ErrInvalidExtraReward   = New(KindEconomic, "invalid extra reward")
	ErrInvalidFundingAmount = New(KindEconomic, "invalid funding amount")

	ErrBadOrigin = New(KindOrigin, "bad origin")
)
