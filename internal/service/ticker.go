package service

import (
	"context"
	"time"
)

// Ticker drives the two session clocks: the once-a-second elapsed-time
// advance and the coarser snapshot broadcast for watchers.
type Ticker struct {
	sessions  *SessionService
	tickEvery time.Duration
	pollEvery time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewTicker(sessions *SessionService, tickEvery, pollEvery time.Duration) *Ticker {
	if tickEvery <= 0 {
		tickEvery = time.Second
	}
	if pollEvery <= 0 {
		pollEvery = 2 * time.Second
	}
	return &Ticker{
		sessions:  sessions,
		tickEvery: tickEvery,
		pollEvery: pollEvery,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run blocks until Stop is called; start it on its own goroutine.
func (t *Ticker) Run() {
	tick := time.NewTicker(t.tickEvery)
	poll := time.NewTicker(t.pollEvery)
	defer tick.Stop()
	defer poll.Stop()
	defer close(t.done)

	for {
		select {
		case <-tick.C:
			t.sessions.AdvanceClocks(context.Background())
		case <-poll.C:
			t.sessions.BroadcastActive(context.Background())
		case <-t.stop:
			return
		}
	}
}

// Stop halts the loop and waits for it to drain.
func (t *Ticker) Stop() {
	close(t.stop)
	<-t.done
}
