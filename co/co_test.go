// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoesWait(t *testing.T) {
	var (
		goes Goes
		n    atomic.Int32
	)
	for range 8 {
		goes.Go(func() { n.Add(1) })
	}
	goes.Wait()
	assert.Equal(t, int32(8), n.Load())

	select {
	case <-goes.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed")
	}
}

func TestStoppable(t *testing.T) {
	s := NewStoppable()
	var stopped atomic.Int32
	for range 3 {
		assert.True(t, s.Go(func(stop <-chan struct{}) {
			<-stop
			stopped.Add(1)
		}))
	}
	assert.False(t, s.Stopped())

	s.Stop()
	assert.True(t, s.Stopped())
	assert.Equal(t, int32(3), stopped.Load())

	// second stop is a no-op
	s.Stop()
}

func TestStoppableRefusesWorkAfterStop(t *testing.T) {
	s := NewStoppable()
	s.Stop()

	var ran atomic.Bool
	assert.False(t, s.Go(func(<-chan struct{}) { ran.Store(true) }))
	s.Wait()
	assert.False(t, ran.Load())
}

func TestStoppableGoRacingStop(t *testing.T) {
	for range 50 {
		var (
			s       = NewStoppable()
			started atomic.Int32
			exited  atomic.Int32
			spawner Goes
		)
		for range 4 {
			spawner.Go(func() {
				for range 20 {
					if s.Go(func(stop <-chan struct{}) {
						defer exited.Add(1)
						<-stop
					}) {
						started.Add(1)
					}
				}
			})
		}
		s.Stop()
		spawner.Wait()

		// goroutines accepted before Stop have exited, none were accepted after
		s.Wait()
		assert.Equal(t, started.Load(), exited.Load())
	}
}
