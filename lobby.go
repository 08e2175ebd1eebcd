package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// lobbySession handles name selection and the room listing.
type lobbySession struct {
	key   string
	names *names
	rooms *roomStore
	h     *hub
	out   presenter

	mu      sync.Mutex
	user    string
	listing []roomInfo
	sub     *subscription
	alert   *alert
	clear   bool
	closed  bool
}

func newLobbySession(key string, n *names, rs *roomStore, h *hub, out presenter) *lobbySession {
	return &lobbySession{
		key:   key,
		names: n,
		rooms: rs,
		h:     h,
		out:   out,
	}
}

func (l *lobbySession) log() *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"user":    l.user,
		"session": l.key,
	})
}

func (l *lobbySession) enter() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if user, ok := l.names.lookup(l.key); ok {
		l.user = user
		l.startListing()
	}
	l.present()
}

func (l *lobbySession) act(a action) error {
	switch a.Type {
	case actionSetName:
		return l.setName(a.Value)
	case actionCreateRoom:
		return l.createRoom(a.Value)
	}
	return fmt.Errorf("unexpected lobby action %q", a.Type)
}

func (l *lobbySession) setName(candidate string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	if err := l.names.claim(l.key, candidate); err != nil {
		l.alert = errorAlert(describe(candidate, err))
		l.present()
		return err
	}
	l.user = candidate
	l.log().Info("name claimed")
	l.startListing()
	l.clear = true
	l.present()
	return nil
}

func (l *lobbySession) createRoom(candidate string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	if l.user == "" {
		return errNoName
	}
	if err := l.rooms.create(candidate); err != nil {
		l.alert = errorAlert(describe(candidate, err))
		l.present()
		return err
	}
	l.log().WithField("room", candidate).Info("room created")
	l.alert = successAlert(fmt.Sprintf("%q was created", candidate))
	l.clear = true
	l.listing = l.rooms.list()
	l.present()
	return nil
}

func (l *lobbySession) warn(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.alert = errorAlert(text)
	l.present()
}

func (l *lobbySession) handle(e event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.sub == nil {
		return nil
	}
	l.listing = l.rooms.list()
	l.present()
	return nil
}

func (l *lobbySession) close() {
	l.mu.Lock()
	l.closed = true
	sub := l.sub
	l.sub = nil
	l.mu.Unlock()

	if sub != nil {
		l.h.unsubscribe(sub)
	}
}

// startListing subscribes before taking the first snapshot so no room
// created in between is missed. Callers hold l.mu.
func (l *lobbySession) startListing() {
	if l.sub == nil {
		l.sub = l.h.subscribe(lobbyPattern, l)
	}
	l.listing = l.rooms.list()
}

// present pushes the current state. Callers hold l.mu.
func (l *lobbySession) present() {
	f := frame{
		View:       viewName,
		Alert:      l.alert,
		ClearInput: l.clear,
	}
	if l.sub != nil {
		f.View = viewRooms
		f.User = l.user
		f.Rooms = l.listing
	}
	l.alert = nil
	l.clear = false
	l.out.present(f)
}

func describe(name string, err error) string {
	switch {
	case errors.Is(err, errInvalidFormat):
		return fmt.Sprintf("%q is no valid name", name)
	case errors.Is(err, errAlreadyTaken), errors.Is(err, errAlreadyExists):
		return fmt.Sprintf("%q is already taken", name)
	}
	return err.Error()
}
