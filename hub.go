package main

import (
	"strings"
	"sync"
)

const wildcard = ".*"

// hub is the channel registry. Exact names and wildcard prefixes are kept
// apart so a send probes one map entry per name segment instead of scanning
// every subscription.
type hub struct {
	mu        sync.RWMutex
	channels  channels
	wildcards channels
}

type channels map[string]*channel

func newHub() *hub {
	return &hub{
		channels:  make(channels),
		wildcards: make(channels),
	}
}

func newChannel(name string) *channel {
	return &channel{
		name:          name,
		subscriptions: make(subscriptions),
	}
}

// splitName reports whether name is a wildcard ("prefix.*") and returns the
// key it is indexed under. Wildcard keys keep the trailing dot.
func splitName(name string) (string, bool) {
	if strings.HasSuffix(name, wildcard) {
		return strings.TrimSuffix(name, "*"), true
	}
	return name, false
}

func (h *hub) subscribe(name string, hd handler) *subscription {
	key, wild := splitName(name)
	s := newSubscription(name, key, wild, hd)

	h.mu.Lock()
	set := h.set(wild)
	c, ok := set[key]
	if !ok {
		c = newChannel(key)
		set[key] = c
		incr("channels", 1)
	}
	c.subscribe(s)
	h.mu.Unlock()

	go s.run()
	incr("subscriptions", 1)
	return s
}

func (h *hub) unsubscribe(s *subscription) {
	h.mu.Lock()
	set := h.set(s.wild)
	if c, ok := set[s.key]; ok && c.unsubscribe(s) {
		if len(c.subscriptions) == 0 {
			// A channel is forgotten when its last subscriber leaves.
			delete(set, s.key)
			decr("channels", 1)
		}
		decr("subscriptions", 1)
	}
	h.mu.Unlock()
	s.stop()
}

// send is fire-and-forget: it only appends to subscriber mailboxes.
func (h *hub) send(name string, m *message) {
	e := event{Channel: name, Message: m}

	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	if c, ok := h.channels[name]; ok {
		n += c.publish(e)
	}
	for i := 0; i < len(name); i++ {
		if name[i] != '.' {
			continue
		}
		if c, ok := h.wildcards[name[:i+1]]; ok {
			n += c.publish(e)
		}
	}
	if n == 0 {
		mark("drops", 1)
		return
	}
	mark("sends", int64(n))
}

func (h *hub) set(wild bool) channels {
	if wild {
		return h.wildcards
	}
	return h.channels
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels) + len(h.wildcards)
}
