package main

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

type recorder struct {
	mu     sync.Mutex
	frames []frame
}

func (r *recorder) present(f frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recorder) all() []frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]frame(nil), r.frames...)
}

func (r *recorder) last() frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return frame{}
	}
	return r.frames[len(r.frames)-1]
}

// alerted returns the latest frame that carried an alert. Lobby refreshes
// may land after it.
func (r *recorder) alerted() frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.frames) - 1; i >= 0; i-- {
		if r.frames[i].Alert != nil {
			return r.frames[i]
		}
	}
	return frame{}
}

// seen returns every message shown so far, in the order it first
// appeared. Frames only carry the latest messages.
func (r *recorder) seen() []*message {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := map[string]bool{}
	var out []*message
	for _, f := range r.frames {
		for _, m := range f.Messages {
			if !ids[m.ID] {
				ids[m.ID] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// await blocks until the latest frame satisfies ok.
func (r *recorder) await(t *testing.T, ok func(frame) bool) frame {
	t.Helper()
	require.Eventually(t, func() bool { return ok(r.last()) }, waitFor, time.Millisecond)
	return r.last()
}

type collector struct {
	mu     sync.Mutex
	events []event
	err    error
	panic  bool
	block  chan struct{}
}

func (c *collector) handle(e event) error {
	if c.block != nil {
		<-c.block
	}
	if c.panic {
		panic("boom")
	}
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *collector) received() []event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event(nil), c.events...)
}

func (c *collector) await(t *testing.T, n int) []event {
	t.Helper()
	require.Eventually(t, func() bool { return len(c.received()) >= n }, waitFor, time.Millisecond)
	return c.received()
}

var errHandler = errors.New("handler failed")

type world struct {
	h     *hub
	names *names
	rooms *roomStore
}

func newWorld() *world {
	h := newHub()
	return &world{h: h, names: newNames(), rooms: newRoomStore(h)}
}

func (w *world) chat(t *testing.T, key, user, room string) (*chatSession, *recorder) {
	t.Helper()
	if user != "" {
		require.NoError(t, w.names.claim(key, user))
	}
	r := &recorder{}
	s := newChatSession(key, room, w.names, w.rooms, w.h, r)
	s.enter()
	return s, r
}

func (w *world) lobby(key string) (*lobbySession, *recorder) {
	r := &recorder{}
	l := newLobbySession(key, w.names, w.rooms, w.h, r)
	l.enter()
	return l, r
}

func bodies(ms []*message) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Body)
	}
	return out
}

func countKind(ms []*message, k kind) int {
	n := 0
	for _, m := range ms {
		if m.Kind == k {
			n++
		}
	}
	return n
}
