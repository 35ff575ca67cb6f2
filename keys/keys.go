// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package keys answers whether an account has block-producer credentials.
package keys

import (
	"maps"
	"slices"
	"sync"

	"github.com/vechain/collator/cache"
	"github.com/vechain/collator/log"
	"github.com/vechain/collator/thor"
)

var logger = log.WithContext("pkg", "keys")

// CollatorID identifies a block producer. Accounts map to it one-to-one.
type CollatorID = thor.Address

// Registry is the credential lookup used to gate candidacy.
type Registry interface {
	// CollatorIDOf converts an account into its collator id.
	CollatorIDOf(who thor.Address) (CollatorID, bool)
	// IsRegistered reports whether id has session keys.
	IsRegistered(id CollatorID) bool
}

// MemRegistry is an in-memory Registry where the collator id is the account itself.
type MemRegistry struct {
	mu   sync.RWMutex
	keys map[CollatorID]struct{}
}

var _ Registry = (*MemRegistry)(nil)

func NewMemRegistry(registered ...thor.Address) *MemRegistry {
	r := &MemRegistry{keys: make(map[CollatorID]struct{}, len(registered))}
	for _, addr := range registered {
		r.keys[addr] = struct{}{}
	}
	return r
}

func (r *MemRegistry) CollatorIDOf(who thor.Address) (CollatorID, bool) {
	return who, !who.IsZero()
}

func (r *MemRegistry) IsRegistered(id CollatorID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.keys[id]
	return ok
}

// Register records keys for id.
func (r *MemRegistry) Register(id CollatorID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.keys[id] = struct{}{}
}

// Deregister drops keys for id.
func (r *MemRegistry) Deregister(id CollatorID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.keys, id)
}

// All returns every registered id in ascending order.
func (r *MemRegistry) All() []CollatorID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.SortedFunc(maps.Keys(r.keys), thor.Address.Compare)
}

type conversion struct {
	id CollatorID
	ok bool
}

// Cached memoizes account to collator id conversion, which never changes for an account.
// Registration status is always read through.
type Cached struct {
	Registry
	ids *cache.LRU[thor.Address, conversion]
}

// NewCached wraps reg with an LRU of the given size.
func NewCached(reg Registry, size int) (*Cached, error) {
	ids, err := cache.NewLRU[thor.Address, conversion](size)
	if err != nil {
		return nil, err
	}
	return &Cached{Registry: reg, ids: ids}, nil
}

func (c *Cached) CollatorIDOf(who thor.Address) (CollatorID, bool) {
	v, _ := c.ids.GetOrLoad(who, func(who thor.Address) (conversion, error) {
		id, ok := c.Registry.CollatorIDOf(who)
		return conversion{id, ok}, nil
	})
	if changed, hit, miss := c.ids.Stats().Stats(); changed {
		logger.Trace("collator id cache", "hit", hit, "miss", miss, "rate", c.ids.Stats().HitRate())
	}
	return v.id, v.ok
}
