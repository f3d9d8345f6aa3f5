// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co holds small concurrency helpers shared across the consensus
// core: a broadcast Signal for new-block/new-round notification, a
// cancelable Choes goroutine group, and a bounded Parallel runner.
// Reconstructed from the teacher's co package test files, since its non-test
// sources were not retrieved - the exported surface here is inferred
// entirely from call patterns in signal_test.go, parallel_test.go and
// choes_test.go.
package co

import "sync"

// Signal is a broadcast condition: any number of goroutines can wait on a
// Waiter obtained before the next Broadcast, and are all released together
// when it fires.
type Signal struct {
	mu sync.Mutex
	ch chan struct{}
}

// Waiter is a one-shot handle on the next Broadcast.
type Waiter struct {
	c <-chan struct{}
}

// C returns the channel that closes on the next Broadcast.
func (w Waiter) C() <-chan struct{} {
	return w.c
}

// NewWaiter returns a Waiter for the next Broadcast call.
func (s *Signal) NewWaiter() Waiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return Waiter{s.ch}
}

// Broadcast releases every Waiter obtained since the last Broadcast.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		close(s.ch)
		s.ch = nil
	}
}

// Signal is an alias some packages reach for in place of Broadcast, kept so
// call sites read as "signal the tick" rather than "broadcast the tick".
func (s *Signal) Signal() {
	s.Broadcast()
}
