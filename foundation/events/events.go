// Package events lets a ledger node's background machinery broadcast
// what it is doing to any number of subscribers, typically websocket
// clients attached to the node's debug stream.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer bounds how far a slow subscriber can fall behind before
// Send starts dropping messages to it rather than blocking the sender.
const messageBuffer = 100

// Events maintains a set of subscriber channels keyed by an arbitrary
// id (a request trace id, in practice) so goroutines can register and
// receive a live feed of node activity.
type Events struct {
	m  map[string]chan string
	mu sync.RWMutex
}

// New constructs an Events ready to accept subscribers.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Shutdown closes and removes every subscriber channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire registers id as a subscriber and returns the channel it will
// receive messages on. Calling Acquire again with the same id returns
// the existing channel.
func (evt *Events) Acquire(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	evt.m[id] = make(chan string, messageBuffer)
	return evt.m[id]
}

// Release closes and removes the channel acquired under id.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Send delivers s to every registered subscriber. A subscriber that
// isn't ready to receive has the message dropped rather than stalling
// the sender.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- s:
		default:
		}
	}
}

// Handler adapts Events into the printf-style callback comm.Worker
// expects for its EventHandler, so a node's background worker can
// broadcast its activity lines straight to subscribers without either
// package importing the other.
func (evt *Events) Handler() func(format string, v ...any) {
	return func(format string, v ...any) {
		evt.Send(fmt.Sprintf(format, v...))
	}
}
