package main

// messageView is the displayed message sequence of one chat session. It
// holds at most limit entries and forgets the oldest first. It is not safe
// for concurrent use; the owning session's lock guards it.
type messageView struct {
	limit   int
	entries []*message
	seen    map[string]struct{}
}

func newMessageView(limit int) *messageView {
	return &messageView{limit: limit, seen: make(map[string]struct{})}
}

// render inserts m at index, or appends it when index is negative or past
// the end. A message already on display is skipped and render returns
// false.
func (v *messageView) render(m *message, index int) bool {
	if _, ok := v.seen[m.ID]; ok {
		return false
	}
	v.seen[m.ID] = struct{}{}
	if index < 0 || index >= len(v.entries) {
		v.entries = append(v.entries, m)
	} else {
		v.entries = append(v.entries, nil)
		copy(v.entries[index+1:], v.entries[index:])
		v.entries[index] = m
	}
	v.trim()
	return true
}

// trim evicts from the front. The room log only ever hands out newer
// messages, so an evicted id is not rendered again.
func (v *messageView) trim() {
	for v.limit > 0 && len(v.entries) > v.limit {
		delete(v.seen, v.entries[0].ID)
		v.entries[0] = nil
		v.entries = v.entries[1:]
	}
}

func (v *messageView) snapshot() []*message {
	return append([]*message(nil), v.entries...)
}

func (v *messageView) len() int {
	return len(v.entries)
}
