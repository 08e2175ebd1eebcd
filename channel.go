package main

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

type event struct {
	Channel string
	Message *message
}

// handler receives events on the goroutine of its subscription.
type handler interface {
	handle(e event) error
}

type channel struct {
	name          string
	subscriptions subscriptions
}

type subscriptions map[*subscription]interface {
}

// Callers hold the hub lock.
func (c *channel) subscribe(s *subscription) {
	c.subscriptions[s] = nil
}

func (c *channel) unsubscribe(s *subscription) bool {
	if _, ok := c.subscriptions[s]; ok {
		delete(c.subscriptions, s)
		return true
	}
	return false
}

func (c *channel) publish(e event) int {
	n := 0
	for s := range c.subscriptions {
		if s.push(e) {
			n++
		}
	}
	return n
}

// subscription owns an unbounded FIFO mailbox drained by its own goroutine,
// so a slow handler only delays itself.
type subscription struct {
	name    string
	key     string
	wild    bool
	handler handler

	mu     sync.Mutex
	queue  []event
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newSubscription(name, key string, wild bool, hd handler) *subscription {
	return &subscription{
		name:    name,
		key:     key,
		wild:    wild,
		handler: hd,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (s *subscription) push(e event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.queue = append(s.queue, e)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

func (s *subscription) next() (event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.queue) == 0 {
		return event{}, false
	}
	e := s.queue[0]
	s.queue[0] = event{}
	s.queue = s.queue[1:]
	return e, true
}

func (s *subscription) run() {
	defer close(s.done)
	for range s.wake {
		for {
			e, ok := s.next()
			if !ok {
				break
			}
			s.deliver(e)
		}
	}
}

// stop discards pending events and ends run. It does not wait for a
// delivery already in progress.
func (s *subscription) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.queue = nil
	close(s.wake)
}

func (s *subscription) deliver(e event) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(e, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := s.handler.handle(e); err != nil {
		s.fail(e, err)
	}
}

func (s *subscription) fail(e event, err error) {
	incr("handler.failures", 1)
	logger.WithFields(logrus.Fields{
		"channel":      e.Channel,
		"subscription": s.name,
	}).WithError(err).Warn("handler failed")
}
