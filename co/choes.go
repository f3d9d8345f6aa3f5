// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Choes is a group of cancelable goroutines: every member receives a stop
// channel it must honor, closed exactly once by Stop. Used by package
// runtime to tear down role-specific worker loops on shutdown.
type Choes struct {
	wg     sync.WaitGroup
	once   sync.Once
	stopCh chan struct{}
}

// NewChoes returns a ready-to-use Choes.
func NewChoes() *Choes {
	return &Choes{stopCh: make(chan struct{})}
}

// Go starts f in a new goroutine, passing it the group's stop channel.
func (c *Choes) Go(f func(stopChan chan struct{})) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		f(c.stopCh)
	}()
}

// Stop closes the stop channel, signalling every member to return. Safe to
// call more than once or concurrently.
func (c *Choes) Stop() {
	c.once.Do(func() { close(c.stopCh) })
}

// Wait blocks until every goroutine started by Go has returned.
func (c *Choes) Wait() {
	c.wg.Wait()
}
