// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"
	"slices"

	"github.com/vechain/collator/thor"
)

func RandAddress() (addr thor.Address) {
	rand.Read(addr[:])
	return
}

// RandAddresses returns n distinct addresses in ascending order.
func RandAddresses(n int) []thor.Address {
	seen := make(map[thor.Address]struct{}, n)
	out := make([]thor.Address, 0, n)
	for len(out) < n {
		a := RandAddress()
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	slices.SortFunc(out, thor.Address.Compare)
	return out
}
