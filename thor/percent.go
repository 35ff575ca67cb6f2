// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"strconv"

	"github.com/holiman/uint256"
)

// Percent is an integer percentage in [0, 100].
type Percent uint8

// MaxPercent is one hundred percent.
const MaxPercent Percent = 100

// NewPercent clamps v into the valid range.
func NewPercent(v uint64) Percent {
	if v > uint64(MaxPercent) {
		return MaxPercent
	}
	return Percent(v)
}

func (p Percent) String() string {
	return strconv.Itoa(int(p)) + "%"
}

// IsZero returns true for 0%.
func (p Percent) IsZero() bool {
	return p == 0
}

// MulFloor returns floor(x * p / 100).
func (p Percent) MulFloor(x uint64) uint64 {
	return MulDivFloor(x, uint64(p), uint64(MaxPercent))
}

// MulDivFloor returns floor(x * y / d) using a 256-bit intermediate.
// The result saturates at MaxUint64; d must not be zero.
func MulDivFloor(x, y, d uint64) uint64 {
	if d == 0 {
		panic("thor: division by zero")
	}
	var r uint256.Int
	r.Mul(uint256.NewInt(x), uint256.NewInt(y))
	r.Div(&r, uint256.NewInt(d))
	if !r.IsUint64() {
		return ^uint64(0)
	}
	return r.Uint64()
}
