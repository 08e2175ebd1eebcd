package main

import (
	"fmt"
	"sync"
)

const (
	// messageBacklog bounds every room log.
	messageBacklog = 10

	roomChannelPrefix = "chat.room."
	lobbyChannel      = "chat.lobby.open"
	// Lobbies watch every chat channel: room creation and all room traffic.
	lobbyPattern = "chat.*"
)

func roomChannel(name string) string {
	return roomChannelPrefix + name
}

type room struct {
	name string
	h    *hub

	mu      sync.Mutex
	members []string
	log     []*message
}

type roomInfo struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// roomStore only guards the room map; each room serializes its own state.
type roomStore struct {
	mu    sync.RWMutex
	rooms map[string]*room
	order []string
	h     *hub
}

func newRoomStore(h *hub) *roomStore {
	return &roomStore{
		rooms: make(map[string]*room),
		h:     h,
	}
}

func (s *roomStore) create(name string) error {
	if !validName(name) {
		return fmt.Errorf("%q: %w", name, errInvalidFormat)
	}
	s.mu.Lock()
	if _, ok := s.rooms[name]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%q: %w", name, errAlreadyExists)
	}
	s.rooms[name] = &room{name: name, h: s.h}
	s.order = append(s.order, name)
	s.mu.Unlock()

	incr("rooms", 1)
	s.h.send(lobbyChannel, nil)
	return nil
}

func (s *roomStore) get(name string) (*room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[name]
	return r, ok
}

func (s *roomStore) list() []roomInfo {
	s.mu.RLock()
	rooms := make([]*room, 0, len(s.order))
	for _, name := range s.order {
		rooms = append(rooms, s.rooms[name])
	}
	s.mu.RUnlock()

	infos := make([]roomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, roomInfo{Name: r.name, Members: r.memberCount()})
	}
	return infos
}

func (r *room) channel() string {
	return roomChannel(r.name)
}

func (r *room) join(user string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joinLocked(user)
}

func (r *room) leave(user string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(user)
}

func (r *room) appendMessage(m *message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendLocked(m)
}

// post appends m and publishes it while holding the room lock, so every
// subscriber sees room traffic in log order.
func (r *room) post(m *message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendLocked(m)
	r.h.send(r.channel(), m)
}

// enter snapshots the log, adds user and posts join in one step. Anything
// published after the snapshot reaches subscribers live.
func (r *room) enter(user string, join *message) []*message {
	r.mu.Lock()
	defer r.mu.Unlock()
	history := make([]*message, len(r.log))
	copy(history, r.log)
	r.joinLocked(user)
	r.appendLocked(join)
	r.h.send(r.channel(), join)
	return history
}

func (r *room) exit(user string, leave *message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(user)
	r.appendLocked(leave)
	r.h.send(r.channel(), leave)
}

func (r *room) history() []*message {
	r.mu.Lock()
	defer r.mu.Unlock()
	history := make([]*message, len(r.log))
	copy(history, r.log)
	return history
}

func (r *room) memberList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.members...)
}

func (r *room) memberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *room) joinLocked(user string) {
	r.members = append(r.members, user)
}

// leaveLocked removes the first occurrence of user only.
func (r *room) leaveLocked(user string) bool {
	for i, member := range r.members {
		if member == user {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return true
		}
	}
	return false
}

func (r *room) appendLocked(m *message) {
	r.log = append(r.log, m)
	for len(r.log) > messageBacklog {
		r.log[0] = nil
		r.log = r.log[1:]
	}
}
