// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"runtime"
	"sync"
)

// Parallel runs fn, which feeds work items into queue, across
// runtime.NumCPU() worker goroutines, and returns a channel that closes once
// every queued item has completed.
func Parallel(fn func(queue chan<- func())) <-chan struct{} {
	queue := make(chan func())
	done := make(chan struct{})

	go func() {
		defer close(done)

		var wg sync.WaitGroup
		workers := runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for f := range queue {
					f()
				}
			}()
		}

		fn(queue)
		close(queue)
		wg.Wait()
	}()

	return done
}
