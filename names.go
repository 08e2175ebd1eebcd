package main

import (
	"fmt"
	"sync"
)

// names maps session keys to display names. A name is held by at most one
// session at a time.
type names struct {
	mu        sync.Mutex
	bySession map[string]string
	owners    map[string]string
}

func newNames() *names {
	return &names{
		bySession: make(map[string]string),
		owners:    make(map[string]string),
	}
}

func (n *names) claim(session, name string) error {
	if !validName(name) {
		return fmt.Errorf("%q: %w", name, errInvalidFormat)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if owner, ok := n.owners[name]; ok {
		if owner == session {
			return nil
		}
		return fmt.Errorf("%q: %w", name, errAlreadyTaken)
	}
	if old, ok := n.bySession[session]; ok {
		delete(n.owners, old)
	} else {
		incr("names", 1)
	}
	n.bySession[session] = name
	n.owners[name] = session
	return nil
}

func (n *names) lookup(session string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	name, ok := n.bySession[session]
	return name, ok
}

func (n *names) release(session string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	name, ok := n.bySession[session]
	if !ok {
		return
	}
	delete(n.bySession, session)
	delete(n.owners, name)
	decr("names", 1)
}

func (n *names) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.bySession)
}
