// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New(KindState, "test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)
	assert.Equal(t, KindState, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(42))
}

func Test_WrappedReverts(t *testing.T) {
	err := errors.Wrap(ErrNotCandidate, "stake")
	assert.True(t, IsRevertErr(err))
	assert.ErrorIs(t, err, ErrNotCandidate)
	assert.NotErrorIs(t, err, ErrAlreadyCandidate)
	assert.Equal(t, "stake: not a candidate", err.Error())
}

func Test_KindString(t *testing.T) {
	assert.Equal(t, "capacity", ErrTooManyStakers.Kind().String())
	assert.Equal(t, "eligibility", ErrTooFewEligibleCollators.Kind().String())
	assert.Equal(t, "unknown", Kind(0).String())
}
