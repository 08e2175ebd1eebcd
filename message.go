package main

import (
	"time"

	"github.com/google/uuid"
)

type kind string

const (
	kindMessage kind = "message"
	kindJoin    kind = "join"
	kindLeave   kind = "leave"
)

// message is immutable once built; renderers key on ID.
type message struct {
	ID        string  `json:"id"`
	Timestamp float64 `json:"timestamp"`
	Kind      kind    `json:"kind"`
	Author    string  `json:"author"`
	Body      string  `json:"body"`
}

func newMessage(k kind, author, body string) *message {
	id, err := uuid.NewUUID()
	if err != nil {
		id = uuid.New()
	}
	return &message{
		ID:        id.String(),
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
		Kind:      k,
		Author:    author,
		Body:      body,
	}
}
