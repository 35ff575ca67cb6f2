// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/collator/custodian"
	"github.com/vechain/collator/kv"
	"github.com/vechain/collator/staker"
)

const (
	stakerBucket = kv.Bucket("staker/")
	bankBucket   = kv.Bucket("bank/")
	nodeBucket   = kv.Bucket("node/")
)

var (
	accountsKey = []byte("accounts")
	headKey     = []byte("head")
)

type head struct {
	Block   uint32
	Session uint32
}

// State is everything the node persists.
type State struct {
	Block    uint32
	Session  uint32
	Accounts []custodian.Account
	Staker   *staker.Snapshot
}

// SaveState writes st into a single batch.
func SaveState(db kv.Store, st *State) error {
	batch := db.NewBatch()

	if err := staker.SaveSnapshot(stakerBucket.NewBatch(batch), st.Staker); err != nil {
		return err
	}
	data, err := rlp.EncodeToBytes(st.Accounts)
	if err != nil {
		return errors.Wrap(err, "encode accounts")
	}
	if err := bankBucket.NewBatch(batch).Put(accountsKey, data); err != nil {
		return err
	}
	if data, err = rlp.EncodeToBytes(&head{st.Block, st.Session}); err != nil {
		return errors.Wrap(err, "encode head")
	}
	if err := nodeBucket.NewBatch(batch).Put(headKey, data); err != nil {
		return err
	}
	return batch.Write()
}

// LoadState reads the state saved in db. It returns nil if nothing was saved yet.
func LoadState(db kv.Store) (*State, error) {
	snap, err := staker.LoadSnapshot(stakerBucket.NewGetter(db))
	if err != nil || snap == nil {
		return nil, err
	}
	st := &State{Staker: snap}

	data, err := bankBucket.NewGetter(db).Get(accountsKey)
	if err != nil {
		return nil, errors.Wrap(err, "get accounts")
	}
	if err := rlp.DecodeBytes(data, &st.Accounts); err != nil {
		return nil, errors.Wrap(err, "decode accounts")
	}

	data, err = nodeBucket.NewGetter(db).Get(headKey)
	if err != nil {
		return nil, errors.Wrap(err, "get head")
	}
	var h head
	if err := rlp.DecodeBytes(data, &h); err != nil {
		return nil, errors.Wrap(err, "decode head")
	}
	st.Block, st.Session = h.Block, h.Session
	return st, nil
}
