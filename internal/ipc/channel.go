// Package ipc carries the request/response traffic between the ticker
// poller and the decision workers. One logical channel pair is shared by
// every worker, with a single request slot: there is no request
// correlation, so access is serialized through SnapshotClient.
package ipc

import (
	"errors"
	"sync"
	"time"

	"vcts/internal/market"
)

// ErrTimeout is returned by Receive when no response arrives in time,
// letting the caller detect a stalled poller instead of blocking forever.
var ErrTimeout = errors.New("ipc: receive timeout")

// Command is a request kind sent to the poller.
type Command string

// CommandGetSnapshot asks the poller for the current snapshot bundle.
// It is the only command defined today.
const CommandGetSnapshot Command = "get snapshot"

// Channel is a one-request-in-flight request/response pair.
type Channel struct {
	req chan Command
	rsp chan market.Snapshot
}

// NewChannel creates a channel pair with a single request slot.
func NewChannel() *Channel {
	return &Channel{
		req: make(chan Command, 1),
		rsp: make(chan market.Snapshot, 1),
	}
}

// Request enqueues a command. It blocks while the request slot is taken,
// which only happens when callers bypass SnapshotClient.
func (c *Channel) Request(cmd Command) {
	c.req <- cmd
}

// TryReceiveRequest dequeues a pending command without blocking.
func (c *Channel) TryReceiveRequest() (Command, bool) {
	select {
	case cmd := <-c.req:
		return cmd, true
	default:
		return "", false
	}
}

// Respond enqueues exactly one snapshot for the most recently dequeued
// command.
func (c *Channel) Respond(s market.Snapshot) {
	c.rsp <- s
}

// Receive blocks until a response arrives or the timeout elapses.
func (c *Channel) Receive(timeout time.Duration) (market.Snapshot, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s := <-c.rsp:
		return s, nil
	case <-timer.C:
		return market.Snapshot{}, ErrTimeout
	}
}

// SnapshotClient serializes request+receive so that a response can never be
// claimed by a different worker than the one that asked for it. All workers
// sharing one Channel must go through the same client.
type SnapshotClient struct {
	mu      sync.Mutex
	ch      *Channel
	timeout time.Duration
}

// NewSnapshotClient wraps a channel with the configured receive budget.
func NewSnapshotClient(ch *Channel, timeout time.Duration) *SnapshotClient {
	return &SnapshotClient{ch: ch, timeout: timeout}
}

// Snapshot performs one get-snapshot round trip.
// A response that arrived after a previous call timed out is stale; it is
// discarded here before the new request goes out.
func (c *SnapshotClient) Snapshot() (market.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.ch.rsp:
	default:
	}

	c.ch.Request(CommandGetSnapshot)
	return c.ch.Receive(c.timeout)
}
