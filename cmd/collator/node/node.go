// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node drives the staking engine with simulated blocks and sessions.
package node

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/collator/api/subscriptions"
	"github.com/vechain/collator/custodian"
	"github.com/vechain/collator/keys"
	"github.com/vechain/collator/kv"
	"github.com/vechain/collator/log"
	"github.com/vechain/collator/metrics"
	"github.com/vechain/collator/staker"
	"github.com/vechain/collator/thor"
)

var (
	logger = log.WithContext("pkg", "node")

	metricBlocks       = metrics.LazyLoadCounter("node_block_count")
	metricSessions     = metrics.LazyLoadCounter("node_session_count")
	metricOrphanBlocks = metrics.LazyLoadCounter("node_unauthored_block_count")
)

const keyCacheSize = 1024

type Options struct {
	BlockInterval time.Duration
	SessionLength uint32
	BlockReward   uint64
	TickBudget    uint64
}

// Node owns the engine and its host services. The engine is only touched
// under mu; events raised by a call are published after mu is released.
type Node struct {
	mu      sync.RWMutex
	staker  *staker.Staker
	bank    *custodian.Bank
	keys    *keys.MemRegistry
	db      kv.Store
	clock   mclock.Clock
	opts    Options
	block   uint32
	session uint32
	pending []*subscriptions.EventMessage

	eventFeed event.Feed
	scope     event.SubscriptionScope
}

// New opens the node on db, restoring the saved state or applying genesis when db is empty.
func New(
	db kv.Store,
	params staker.Params,
	stakerGenesis staker.Genesis,
	genesis *Genesis,
	opts Options,
	clock mclock.Clock,
) (*Node, error) {
	if opts.SessionLength == 0 {
		return nil, errors.New("session length must be greater than 0")
	}
	if opts.BlockInterval <= 0 {
		return nil, errors.New("block interval must be positive")
	}
	if err := genesis.Validate(); err != nil {
		return nil, err
	}

	n := &Node{
		bank:  custodian.NewBank(genesis.ExistentialDeposit),
		keys:  keys.NewMemRegistry(),
		db:    db,
		clock: clock,
		opts:  opts,
	}
	for _, acc := range genesis.Accounts {
		if acc.Keys {
			n.keys.Register(acc.Address)
		}
	}
	registry, err := keys.NewCached(n.keys, keyCacheSize)
	if err != nil {
		return nil, err
	}
	n.staker, err = staker.New(params, staker.ClockFunc(n.currentBlock), registry, n.bank, staker.EmitterFunc(n.record))
	if err != nil {
		return nil, err
	}

	st, err := LoadState(db)
	if err != nil {
		return nil, errors.Wrap(err, "load state")
	}
	if st != nil {
		if err := n.restore(st); err != nil {
			return nil, err
		}
	} else {
		if err := n.applyGenesis(stakerGenesis, genesis); err != nil {
			return nil, errors.Wrap(err, "apply genesis")
		}
		if err := n.persist(); err != nil {
			return nil, err
		}
	}
	// nobody is subscribed yet
	n.pending = nil
	return n, nil
}

func (n *Node) currentBlock() uint32 {
	return n.block
}

func (n *Node) record(ev staker.Event) {
	n.pending = append(n.pending, subscriptions.NewEventMessage(ev, n.block, n.session))
}

func (n *Node) restore(st *State) error {
	n.bank.Restore(st.Accounts)
	if err := n.staker.Restore(st.Staker); err != nil {
		return errors.Wrap(err, "restore staker")
	}
	n.block, n.session = st.Block, st.Session
	logger.Info("state restored", "block", n.block, "session", n.session)
	return nil
}

func (n *Node) applyGenesis(sg staker.Genesis, g *Genesis) error {
	for _, acc := range g.Accounts {
		n.bank.Mint(acc.Address, acc.Balance)
	}
	n.bank.Mint(n.staker.Pot(), g.PotBalance)
	n.bank.Mint(n.staker.ExtraRewardPot(), g.ExtraPotBalance)

	if err := n.staker.Initialize(sg); err != nil {
		return err
	}
	for _, acc := range g.Accounts {
		if !acc.Candidate {
			continue
		}
		if err := n.staker.RegisterAsCandidate(acc.Address); err != nil {
			return errors.Wrapf(err, "register %v", acc.Address)
		}
	}
	for _, acc := range g.Accounts {
		for _, st := range acc.Stakes {
			if err := n.staker.AddStake(acc.Address, st.Candidate, st.Amount); err != nil {
				return errors.Wrapf(err, "stake %v on %v", acc.Address, st.Candidate)
			}
		}
		if !acc.AutoCompound.IsZero() {
			n.staker.SetAutoCompoundPercentage(acc.Address, acc.AutoCompound)
		}
	}
	collators := n.staker.OnSessionRotate(0)

	logger.Info("genesis applied",
		"accounts", len(g.Accounts),
		"candidates", len(n.staker.Candidates()),
		"collators", len(collators),
	)
	return nil
}

// persist saves the state. Callers hold mu.
func (n *Node) persist() error {
	return SaveState(n.db, &State{
		Block:    n.block,
		Session:  n.session,
		Accounts: n.bank.Accounts(),
		Staker:   n.staker.Snapshot(),
	})
}

// Run produces a block every block interval until ctx is done, then saves the state.
func (n *Node) Run(ctx context.Context) error {
	logger.Debug("enter block loop")
	defer logger.Debug("leave block loop")
	defer n.scope.Close()

	timer := n.clock.NewTimer(n.opts.BlockInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			n.mu.Lock()
			defer n.mu.Unlock()
			return n.persist()
		case <-timer.C():
			if err := n.exec(n.produce); err != nil {
				return err
			}
			timer.Reset(n.opts.BlockInterval)
		}
	}
}

// exec runs f under the write lock, then publishes the events it raised.
func (n *Node) exec(f func() error) error {
	n.mu.Lock()
	err := f()
	msgs := n.pending
	n.pending = nil
	n.mu.Unlock()

	for _, msg := range msgs {
		n.eventFeed.Send(msg)
	}
	return err
}

// produce authors one block and, at a session boundary, rotates the session.
func (n *Node) produce() error {
	n.block++
	metricBlocks().Add(1)

	collators := n.staker.Collators()
	if len(collators) > 0 {
		author := collators[int(n.block)%len(collators)]
		n.bank.Mint(n.staker.Pot(), n.opts.BlockReward)
		n.staker.OnBlockAuthored(author)
		logger.Trace("block authored", "block", n.block, "author", author)
	} else {
		metricOrphanBlocks().Add(1)
		logger.Warn("no collators, block left unauthored", "block", n.block)
	}
	n.staker.OnSchedulingTick(n.opts.TickBudget)

	if n.block%n.opts.SessionLength != 0 {
		return nil
	}
	return n.rotate()
}

func (n *Node) rotate() error {
	start := n.clock.Now()
	next := n.session + 1

	totals := n.staker.TotalBlocks(n.session)
	n.staker.OnSessionEnd(n.session)
	collators := n.staker.OnSessionRotate(next)
	n.session = next
	n.staker.OnSessionStart(next)
	metricSessions().Add(1)

	if err := n.persist(); err != nil {
		return errors.Wrap(err, "persist state")
	}
	logger.Info("session rotated",
		"session", next,
		"blocks", totals.Total,
		"rewardable", totals.Rewardable,
		"pool", n.staker.Rewards(next-1),
		"collators", len(collators),
		"candidates", len(n.staker.Candidates()),
		"elapsed", time.Duration(n.clock.Now()-start),
	)
	return nil
}

// Read runs f with the engine locked for reading.
func (n *Node) Read(f func(s *staker.Staker) error) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return f(n.staker)
}

// write runs f with the engine locked for writing and publishes the events it raised.
func (n *Node) write(f func(s *staker.Staker) error) error {
	return n.exec(func() error {
		return f(n.staker)
	})
}

// SubscribeEvents delivers engine events to ch until the node stops.
func (n *Node) SubscribeEvents(ch chan *subscriptions.EventMessage) event.Subscription {
	return n.scope.Track(n.eventFeed.Subscribe(ch))
}

// Head returns the last produced block and the current session.
func (n *Node) Head() (block uint32, session uint32) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.block, n.session
}

// Balance returns the free balance of who.
func (n *Node) Balance(who thor.Address) uint64 {
	return n.bank.Balance(who)
}
