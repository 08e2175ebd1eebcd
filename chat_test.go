package main

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatEnterWithoutName(t *testing.T) {
	w := newWorld()
	require.NoError(t, w.rooms.create("x"))

	s, r := w.chat(t, "s1", "", "x")

	assert.Equal(t, frame{View: viewRedirect, Location: "/"}, r.last())
	assert.Equal(t, left, s.state)
	room, _ := w.rooms.get("x")
	assert.Zero(t, room.memberCount())
}

func TestChatEnterMissingRoom(t *testing.T) {
	w := newWorld()

	s, r := w.chat(t, "s1", "alice", "nowhere")
	assert.Equal(t, viewNotFound, r.last().View)
	assert.Equal(t, "nowhere", r.last().Room)
	assert.Equal(t, left, s.state)
	assert.Zero(t, w.h.count())

	// Never joined, so closing has nothing to clean up.
	s.close()
	assert.ErrorIs(t, s.send("hi"), errNotJoined)
}

// Scenario A
func TestChatReplayThenLive(t *testing.T) {
	w := newWorld()
	require.NoError(t, w.rooms.create("lobby1"))

	a, ra := w.chat(t, "sa", "A", "lobby1")
	defer a.close()
	require.NoError(t, a.send("hi"))
	ra.await(t, func(f frame) bool { return len(f.Messages) == 2 })

	b, rb := w.chat(t, "sb", "B", "lobby1")
	defer b.close()

	f := rb.await(t, func(f frame) bool { return len(f.Messages) == 3 })
	assert.Equal(t, 1, countKind(f.Messages, kindMessage))
	assert.Equal(t, 2, countKind(f.Messages, kindJoin))
	assert.Equal(t, []string{"Joined", "hi", "Joined"}, bodies(f.Messages))
	assert.Equal(t, "A", f.Messages[0].Author)
	assert.Equal(t, "B", f.Messages[2].Author)

	ids := map[string]bool{}
	for _, m := range f.Messages {
		assert.False(t, ids[m.ID], "duplicate %s", m.ID)
		ids[m.ID] = true
	}

	// A sees B arrive live.
	ra.await(t, func(f frame) bool { return len(f.Messages) == 3 })
}

// Scenario B
func TestChatLateJoinerSeesLastTen(t *testing.T) {
	w := newWorld()
	require.NoError(t, w.rooms.create("x"))
	a, _ := w.chat(t, "sa", "A", "x")
	defer a.close()

	for i := 1; i <= 11; i++ {
		require.NoError(t, a.send(fmt.Sprintf("m%d", i)))
	}
	room, _ := w.rooms.get("x")
	history := room.history()
	require.Len(t, history, messageBacklog)
	assert.Equal(t, "m2", history[0].Body)
	assert.Equal(t, "m11", history[9].Body)

	b, rb := w.chat(t, "sb", "B", "x")
	defer b.close()
	// The first frame is the replay.
	f := rb.all()[0]
	assert.NotContains(t, bodies(f.Messages), "m1")
	assert.Equal(t, history, f.Messages)

	// B's own join pushes the oldest line out.
	f = rb.await(t, func(f frame) bool { return countKind(f.Messages, kindJoin) == 1 })
	assert.Len(t, f.Messages, messageBacklog)
	assert.Equal(t, "m3", f.Messages[0].Body)
}

// Scenario D
func TestChatDisconnectLeavesOnce(t *testing.T) {
	w := newWorld()
	require.NoError(t, w.rooms.create("x"))
	room, _ := w.rooms.get("x")

	s, _ := w.chat(t, "s1", "alice", "x")
	assert.Equal(t, []string{"alice"}, room.memberList())

	s.close()
	s.close()

	assert.Empty(t, room.memberList())
	assert.Equal(t, 1, countKind(room.history(), kindLeave))
	assert.Zero(t, w.h.count())
}

func TestChatSameUserTwice(t *testing.T) {
	w := newWorld()
	require.NoError(t, w.rooms.create("x"))
	room, _ := w.rooms.get("x")

	s1, _ := w.chat(t, "s1", "alice", "x")
	s2, _ := w.chat(t, "s1", "", "x")
	assert.Equal(t, []string{"alice", "alice"}, room.memberList())

	s1.close()
	assert.Equal(t, []string{"alice"}, room.memberList())
	s2.close()
	assert.Empty(t, room.memberList())
}

func TestChatSend(t *testing.T) {
	w := newWorld()
	require.NoError(t, w.rooms.create("x"))
	s, r := w.chat(t, "s1", "alice", "x")
	defer s.close()
	room, _ := w.rooms.get("x")

	// Whitespace only is a no-op.
	require.NoError(t, s.send("   \n\t"))
	assert.Len(t, room.history(), 1)

	require.NoError(t, s.send("  hello  "))
	f := r.await(t, func(f frame) bool { return len(f.Messages) == 2 })
	assert.Equal(t, "hello", f.Messages[1].Body)
	assert.Equal(t, kindMessage, f.Messages[1].Kind)
	assert.Equal(t, "alice", f.Messages[1].Author)

	cleared := false
	for _, f := range r.all() {
		cleared = cleared || f.ClearInput
	}
	assert.True(t, cleared)

	assert.Error(t, s.act(action{Type: "dance"}))
	require.NoError(t, s.act(action{Type: actionSend, Value: "via act"}))
	assert.Equal(t, "via act", room.history()[2].Body)
}

func TestChatHandleIdempotent(t *testing.T) {
	w := newWorld()
	require.NoError(t, w.rooms.create("x"))
	s, r := w.chat(t, "s1", "alice", "x")
	defer s.close()
	r.await(t, func(f frame) bool { return len(f.Messages) == 1 })

	m := newMessage(kindMessage, "bob", "twice")
	e := event{Channel: "chat.room.x", Message: m}
	require.NoError(t, s.handle(e))
	require.NoError(t, s.handle(e))
	require.NoError(t, s.handle(event{Channel: "chat.room.x"}))

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Equal(t, 2, s.view.len())
}

func TestChatPublishOrder(t *testing.T) {
	w := newWorld()
	require.NoError(t, w.rooms.create("x"))
	a, _ := w.chat(t, "sa", "A", "x")
	defer a.close()
	b, rb := w.chat(t, "sb", "B", "x")
	defer b.close()

	var want []string
	for i := 0; i < 30; i++ {
		body := fmt.Sprint(i)
		want = append(want, body)
		require.NoError(t, a.send(body))
	}

	require.Eventually(t, func() bool { return countKind(rb.seen(), kindMessage) == 30 }, waitFor, time.Millisecond)
	var got []string
	for _, m := range rb.seen() {
		if m.Kind == kindMessage {
			got = append(got, m.Body)
		}
	}
	assert.Equal(t, want, got)
	assert.LessOrEqual(t, len(rb.last().Messages), messageBacklog)
}

func TestChatViewBounded(t *testing.T) {
	w := newWorld()
	require.NoError(t, w.rooms.create("x"))
	s, r := w.chat(t, "s1", "alice", "x")
	defer s.close()

	for i := 0; i < 200; i++ {
		require.NoError(t, s.send(fmt.Sprint(i)))
	}
	f := r.await(t, func(f frame) bool {
		return len(f.Messages) > 0 && f.Messages[len(f.Messages)-1].Body == "199"
	})
	assert.Len(t, f.Messages, messageBacklog)
	for _, f := range r.all() {
		assert.LessOrEqual(t, len(f.Messages), messageBacklog)
	}
}

func TestChatWarn(t *testing.T) {
	w := newWorld()
	require.NoError(t, w.rooms.create("x"))

	// Nothing to show before a join.
	missing, rm := w.chat(t, "s0", "bob", "nowhere")
	missing.warn("slow down")
	assert.Len(t, rm.all(), 1)

	s, r := w.chat(t, "s1", "alice", "x")
	s.warn("slow down")
	f := r.alerted()
	assert.Equal(t, viewChat, f.View)
	assert.Equal(t, "error", f.Alert.Level)
	assert.Equal(t, "slow down", f.Alert.Text)

	// The alert is shown once.
	require.NoError(t, s.send("hi"))
	assert.Nil(t, r.last().Alert)

	s.close()
	n := len(r.all())
	s.warn("slow down")
	assert.Len(t, r.all(), n)
}

func TestChatCloseRacesSend(t *testing.T) {
	for i := 0; i < 20; i++ {
		w := newWorld()
		require.NoError(t, w.rooms.create("x"))
		room, _ := w.rooms.get("x")
		s, _ := w.chat(t, "s1", "alice", "x")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				s.send("hi")
			}
		}()
		go func() {
			defer wg.Done()
			s.close()
		}()
		wg.Wait()
		s.close()

		history := room.history()
		assert.Empty(t, room.memberList())
		assert.Equal(t, 1, countKind(history, kindLeave))
		// Nothing is sent after the leave.
		assert.Equal(t, kindLeave, history[len(history)-1].Kind)
	}
}

func TestChatStateString(t *testing.T) {
	assert.Equal(t, "joined", joined.String())
	assert.Equal(t, "chatState(9)", chatState(9).String())
}
