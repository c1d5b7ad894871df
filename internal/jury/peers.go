package jury

import (
	"sync"
	"time"
)

// PeerChannel is the host-supplied broadcast transport between replicas.
// Delivery is eventual and unordered; whether a node's own broadcasts loop
// back to it is a property of the transport, not of the engine.
type PeerChannel interface {
	// Broadcast sends a message to all peers.
	Broadcast(data []byte) error

	// Receive waits up to timeout for one message. ok is false on timeout.
	Receive(timeout time.Duration) (data []byte, ok bool)
}

// Bus is an in-memory PeerChannel connecting the nodes of one process: every
// Broadcast is delivered to every endpoint, the sender included. Used by
// tests and the demo command.
type Bus struct {
	mu        sync.Mutex
	endpoints []*BusEndpoint
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Join adds an endpoint to the bus.
func (b *Bus) Join() *BusEndpoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	ep := &BusEndpoint{bus: b, inbox: make(chan []byte, 256)}
	b.endpoints = append(b.endpoints, ep)
	return ep
}

// broadcast delivers data to every endpoint, dropping on full inboxes: the
// transport promises eventual delivery to live peers, not backpressure.
func (b *Bus) broadcast(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ep := range b.endpoints {
		select {
		case ep.inbox <- data:
		default:
		}
	}
}

// BusEndpoint is one node's connection to a Bus.
type BusEndpoint struct {
	bus   *Bus
	inbox chan []byte
}

// Broadcast implements PeerChannel.
func (e *BusEndpoint) Broadcast(data []byte) error {
	e.bus.broadcast(data)
	return nil
}

// Receive implements PeerChannel.
func (e *BusEndpoint) Receive(timeout time.Duration) ([]byte, bool) {
	select {
	case data := <-e.inbox:
		return data, true
	case <-time.After(timeout):
		return nil, false
	}
}
