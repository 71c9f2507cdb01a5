// Package parallel splits index ranges across goroutines.
//
// A panic in a worker is re-raised on the calling goroutine once every
// worker has returned, so a deferred recover in the caller sees it.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items into contiguous ranges, one per CPU core, and
// runs fn on each range concurrently. It returns when every call has
// finished.
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeN(runtime.NumCPU(), items, fn)
}

// ParallelizeN is Parallelize with an explicit worker count. A worker count
// below 2 runs fn(0, items) on the calling goroutine.
func ParallelizeN(workers, items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if workers < 2 {
		fn(0, items)
		return
	}
	if workers > items {
		workers = items
	}

	// ceiling division
	chunkSize := (items + workers - 1) / workers

	var (
		wg   sync.WaitGroup
		trap panicTrap
	)
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			trap.run(func() { fn(s, e) })
		}(start, end)
	}
	wg.Wait()
	trap.repanic()
}

// ParallelizeWithThreshold runs sequentially when items does not exceed
// threshold, and in parallel otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// Map runs fn(i) for every i in [0, items) using at most workers goroutines.
// Items are handed out one at a time, which balances uneven work such as
// trees of different depth.
func Map(workers, items int, fn func(i int)) {
	if items <= 0 {
		return
	}
	if workers < 2 {
		for i := 0; i < items; i++ {
			fn(i)
		}
		return
	}
	if workers > items {
		workers = items
	}

	next := make(chan int)
	var (
		wg   sync.WaitGroup
		trap panicTrap
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// keep draining after a panic so the sender never blocks
			for i := range next {
				if trap.tripped() {
					continue
				}
				trap.run(func() { fn(i) })
			}
		}()
	}
	for i := 0; i < items; i++ {
		next <- i
	}
	close(next)
	wg.Wait()
	trap.repanic()
}

// panicTrap keeps the first panic raised by any worker.
type panicTrap struct {
	mu    sync.Mutex
	value interface{}
	set   bool
}

func (p *panicTrap) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.mu.Lock()
			if !p.set {
				p.value, p.set = r, true
			}
			p.mu.Unlock()
		}
	}()
	fn()
}

func (p *panicTrap) tripped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set
}

func (p *panicTrap) repanic() {
	if p.set {
		panic(p.value)
	}
}
