// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co tracks the life-cycle of background goroutines.
package co

import (
	"sync"
)

// Goes runs goroutines and waits for them.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a goroutine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait blocks until every goroutine started by Go has returned.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once every goroutine started so far has returned.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}

// Stoppable is a Goes whose goroutines share a stop channel.
// The zero value is not usable, create one with NewStoppable.
type Stoppable struct {
	Goes
	mu   sync.Mutex
	stop chan struct{}
	once sync.Once
}

func NewStoppable() *Stoppable {
	return &Stoppable{stop: make(chan struct{})}
}

// Go runs f in a goroutine, handing it the stop channel. Once Stop has been
// called it runs nothing and returns false.
func (s *Stoppable) Go(f func(stop <-chan struct{})) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Stopped() {
		return false
	}
	s.Goes.Go(func() { f(s.stop) })
	return true
}

// Stopped reports whether Stop has been called.
func (s *Stoppable) Stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// Stop closes the stop channel and waits for the goroutines. It is safe to call more than once.
func (s *Stoppable) Stop() {
	s.mu.Lock()
	s.once.Do(func() { close(s.stop) })
	s.mu.Unlock()

	s.Wait()
}
