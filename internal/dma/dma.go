// Package dma models the hardware transfer engines the renderer issues its
// pixel work through.
//
// A Channel is an exclusive handle to one numbered engine, claimed from a
// fixed pool. Transfers run asynchronously: Copy and Fill return as soon as
// the transfer has been handed to the engine, and Wait blocks until the
// in-flight transfer completes. Starting a transfer on a channel whose
// previous transfer has not been waited on is a programming error and
// panics. Two claimed channels run independently of each other, which is
// what lets the codec overlap a literal copy with the previous record's
// run fill.
package dma

import (
	"fmt"
	"sync"
)

// NumChannels is the size of the channel pool.
const NumChannels = 12

var pool struct {
	mu      sync.Mutex
	claimed [NumChannels]bool
}

// Word is the set of element widths a channel can transfer.
type Word interface {
	~uint16 | ~uint32
}

// Channel is an exclusive handle to one numbered transfer engine.
type Channel struct {
	n        int
	ops      chan func()
	done     chan struct{}
	inFlight bool
	released bool
}

// Claim acquires exclusive use of channel n. It fails if n is out of range
// or the channel is already held; holding a *Channel is the proof of
// exclusive access to that engine.
func Claim(n int) (*Channel, error) {
	if n < 0 || n >= NumChannels {
		return nil, fmt.Errorf("dma: no such channel %d", n)
	}
	pool.mu.Lock()
	defer pool.mu.Unlock()
	if pool.claimed[n] {
		return nil, fmt.Errorf("dma: channel %d already claimed", n)
	}
	pool.claimed[n] = true
	c := &Channel{n: n, ops: make(chan func()), done: make(chan struct{})}
	go c.run()
	return c, nil
}

// MustClaim is Claim, panicking on failure. Intended for setup paths where
// a missing channel is a configuration error.
func MustClaim(n int) *Channel {
	c, err := Claim(n)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Channel) run() {
	for op := range c.ops {
		op()
		c.done <- struct{}{}
	}
}

// N returns the channel number.
func (c *Channel) N() int { return c.n }

// Wait blocks until the channel's in-flight transfer completes. It is a
// no-op on an idle channel.
func (c *Channel) Wait() {
	if !c.inFlight {
		return
	}
	<-c.done
	c.inFlight = false
}

// Release waits for any in-flight transfer and returns the channel to the
// pool. Releasing twice is a no-op; the handle must not be used for
// transfers afterwards.
func (c *Channel) Release() {
	if c.released {
		return
	}
	c.released = true
	c.Wait()
	close(c.ops)
	pool.mu.Lock()
	pool.claimed[c.n] = false
	pool.mu.Unlock()
}

func (c *Channel) start(op func()) {
	if c.inFlight {
		panic(fmt.Sprintf("dma: start on busy channel %d", c.n))
	}
	c.inFlight = true
	c.ops <- op
}

// Copy starts an asynchronous copy of count elements from src to dst on c.
// Counts exceeding either buffer panic before anything is transferred.
func Copy[T Word](c *Channel, dst, src []T, count int) {
	if count < 0 || count > len(dst) || count > len(src) {
		panic(fmt.Sprintf("dma: copy of %d elements overruns buffers (src %d, dst %d)",
			count, len(src), len(dst)))
	}
	dst, src = dst[:count], src[:count]
	c.start(func() {
		copy(dst, src)
	})
}

// Fill starts an asynchronous write of count repetitions of v into dst on c.
func Fill[T Word](c *Channel, dst []T, v T, count int) {
	if count < 0 || count > len(dst) {
		panic(fmt.Sprintf("dma: fill of %d elements overruns buffer (dst %d)",
			count, len(dst)))
	}
	dst = dst[:count]
	c.start(func() {
		for i := range dst {
			dst[i] = v
		}
	})
}
