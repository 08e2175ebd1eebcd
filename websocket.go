package main

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 30 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum action size allowed from peer.
	maxMessageSize = 4096
)

// websocketManager is the part of a websocket connection that a
// connection drives. Tests swap in a fake.
type websocketManager interface {
	wsPrepareRead()
	wsReadMessage() ([]byte, error)
	wsWriteText([]byte) error
	wsPing() error
	wsClose()
}

type websocketInteractor struct {
	ws *websocket.Conn
}

func (w websocketInteractor) wsPrepareRead() {
	w.ws.SetReadLimit(maxMessageSize)
	w.ws.SetReadDeadline(time.Now().Add(pongWait))
	w.ws.SetPongHandler(func(string) error {
		return w.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
}

func (w websocketInteractor) wsReadMessage() ([]byte, error) {
	_, p, err := w.ws.ReadMessage()
	return p, err
}

func (w websocketInteractor) wsWriteText(payload []byte) error {
	w.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return w.ws.WriteMessage(websocket.TextMessage, payload)
}

func (w websocketInteractor) wsPing() error {
	w.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return w.ws.WriteMessage(websocket.PingMessage, nil)
}

func (w websocketInteractor) wsClose() {
	w.ws.Close()
}
