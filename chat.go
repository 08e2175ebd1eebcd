package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type chatState int

const (
	unjoined chatState = iota
	joining
	joined
	left
)

func (s chatState) String() string {
	switch s {
	case unjoined:
		return "unjoined"
	case joining:
		return "joining"
	case joined:
		return "joined"
	case left:
		return "left"
	}
	return fmt.Sprintf("chatState(%d)", int(s))
}

// chatSession is one user's view of one room.
type chatSession struct {
	key      string
	roomName string
	names    *names
	rooms    *roomStore
	h        *hub
	out      presenter

	// mu guards everything below, including the view.
	mu    sync.Mutex
	state chatState
	user  string
	room  *room
	sub   *subscription
	view  *messageView
	alert *alert
	clear bool
}

func newChatSession(key, roomName string, n *names, rs *roomStore, h *hub, out presenter) *chatSession {
	return &chatSession{
		key:      key,
		roomName: roomName,
		names:    n,
		rooms:    rs,
		h:        h,
		out:      out,
		view:     newMessageView(messageBacklog),
	}
}

// log tags entries with the session. Callers hold s.mu.
func (s *chatSession) log() *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"room":    s.roomName,
		"user":    s.user,
		"session": s.key,
	})
}

func (s *chatSession) enter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != unjoined {
		return
	}

	user, ok := s.names.lookup(s.key)
	if !ok {
		s.state = left
		s.out.present(frame{View: viewRedirect, Location: "/"})
		return
	}
	r, ok := s.rooms.get(s.roomName)
	if !ok {
		s.state = left
		s.log().Debug("room not found")
		s.out.present(frame{View: viewNotFound, User: user, Room: s.roomName})
		return
	}

	s.state = joining
	s.user = user
	s.room = r
	s.sub = s.h.subscribe(r.channel(), s)

	history := r.enter(user, newMessage(kindJoin, user, "Joined"))
	for i, m := range history {
		s.view.render(m, i)
	}
	s.state = joined
	incr("chats", 1)
	s.log().Info("joined")
	s.present()
}

func (s *chatSession) act(a action) error {
	switch a.Type {
	case actionSend:
		return s.send(a.Value)
	}
	return fmt.Errorf("unexpected chat action %q", a.Type)
}

func (s *chatSession) send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != joined {
		return errNotJoined
	}
	s.room.post(newMessage(kindMessage, s.user, text))
	s.clear = true
	s.present()
	return nil
}

// warn shows text as an error alert. Sessions that never joined have
// nothing on screen to attach it to.
func (s *chatSession) warn(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != joined {
		return
	}
	s.alert = errorAlert(text)
	s.present()
}

func (s *chatSession) handle(e event) error {
	if e.Message == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != joining && s.state != joined {
		return nil
	}
	if s.view.render(e.Message, -1) {
		s.present()
	}
	return nil
}

// close runs the leave transition at most once, and only for a session
// that reached joined.
func (s *chatSession) close() {
	s.mu.Lock()
	prev := s.state
	s.state = left
	if prev == joined {
		s.room.exit(s.user, newMessage(kindLeave, s.user, "Left"))
		decr("chats", 1)
		s.log().Info("left")
	}
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		s.h.unsubscribe(sub)
	}
}

// present pushes the current state. Callers hold s.mu.
func (s *chatSession) present() {
	f := frame{
		View:       viewChat,
		User:       s.user,
		Room:       s.roomName,
		Messages:   s.view.snapshot(),
		Alert:      s.alert,
		ClearInput: s.clear,
	}
	s.alert = nil
	s.clear = false
	s.out.present(f)
}
