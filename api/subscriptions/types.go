// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/vechain/collator/staker"
)

// EventMessage is an engine event stamped with the block and session it happened in.
type EventMessage struct {
	Name    string       `json:"name"`
	Block   uint32       `json:"block"`
	Session uint32       `json:"session"`
	Data    staker.Event `json:"data"`
}

func NewEventMessage(ev staker.Event, block, session uint32) *EventMessage {
	return &EventMessage{
		Name:    ev.EventName(),
		Block:   block,
		Session: session,
		Data:    ev,
	}
}

// nameFilter matches messages by event name. An empty filter matches everything.
type nameFilter map[string]struct{}

func (f nameFilter) Match(msg *EventMessage) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[msg.Name]
	return ok
}
