package main

import (
	"sync"
	"time"
)

// mTicker fans one time.Ticker out to every websocket writer so idle
// connections share a single timer for keepalive pings.
type mTicker struct {
	mu          sync.Mutex // Protects subscribers and stopped
	subscribers subscribers
	stopped     bool
	dropped     int

	ticker *time.Ticker
	stopCh chan struct{}
}

type subscribers map[*subscriber]interface {
}

type subscriber struct {
	tick chan time.Time
}

func newMTicker(interval time.Duration) *mTicker {
	t := &mTicker{
		subscribers: make(subscribers),
		ticker:      time.NewTicker(interval),
		stopCh:      make(chan struct{}),
	}
	go t.run()
	return t
}

// subscribe returns a subscriber whose tick channel receives ticks. Ticks
// that can't be delivered because the subscriber is not ready are dropped.
// After stop the returned channel is already closed.
func (t *mTicker) subscribe() *subscriber {
	t.mu.Lock()
	defer t.mu.Unlock()

	sub := &subscriber{tick: make(chan time.Time, 1)}
	if t.stopped {
		close(sub.tick)
		return sub
	}
	t.subscribers[sub] = nil
	return sub
}

func (t *mTicker) unsubscribe(sub *subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.subscribers[sub]; ok {
		close(sub.tick)
		delete(t.subscribers, sub)
	}
}

// stop halts the ticker and closes every subscribed channel.
func (t *mTicker) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	for sub := range t.subscribers {
		close(sub.tick)
		delete(t.subscribers, sub)
	}
	t.ticker.Stop()
	close(t.stopCh)
}

func (t *mTicker) run() {
	for {
		select {
		case tick := <-t.ticker.C:
			t.fanOut(tick)
		case <-t.stopCh:
			return
		}
	}
}

func (t *mTicker) fanOut(tick time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for sub := range t.subscribers {
		select {
		case sub.tick <- tick:
		default:
			t.dropped++
		}
	}
}
