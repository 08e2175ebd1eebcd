package main

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// connection carries one session over one websocket. It is the session's
// presenter: every frame is queued for the writer.
type connection struct {
	w       websocketManager
	ticker  *mTicker
	limiter *rate.Limiter
	remote  string
	session session

	mu     sync.Mutex // Protects send and closed
	send   chan []byte
	closed bool
}

func newConnection(w websocketManager, t *mTicker, limiter *rate.Limiter, remote string) *connection {
	return &connection{
		w:       w,
		ticker:  t,
		limiter: limiter,
		remote:  remote,
		send:    make(chan []byte, 256),
	}
}

func (c *connection) log() *logrus.Entry {
	return logger.WithField("remote", c.remote)
}

func (c *connection) run() {
	incr("websockets", 1)
	defer decr("websockets", 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writer()
	}()

	c.session.enter()
	c.reader()
	c.session.close()
	c.shutdown()
	<-done
}

func (c *connection) reader() {
	c.w.wsPrepareRead()
	for {
		if err := c.readMessage(); err != nil {
			c.log().WithError(err).Debug("read ended")
			break
		}
	}
	c.w.wsClose()
}

func (c *connection) readMessage() error {
	p, err := c.w.wsReadMessage()
	if err != nil {
		return err
	}
	incr("conn.recv", 1)

	var a action
	if err := json.Unmarshal(p, &a); err != nil {
		mark("conn.invalid", 1)
		c.log().WithError(err).Debug("invalid action")
		return nil
	}
	if c.limiter != nil && !c.limiter.Allow() {
		mark("conn.throttled", 1)
		c.log().WithField("action", a.Type).Warn("rate limit exceeded; discarding action")
		c.session.warn(throttledText)
		return nil
	}
	if err := c.session.act(a); err != nil {
		c.log().WithField("action", a.Type).WithError(err).Debug("action rejected")
	}
	return nil
}

func (c *connection) writer() {
	sub := c.ticker.subscribe()
	defer func() {
		c.ticker.unsubscribe(sub)
		c.w.wsClose()
	}()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.w.wsWriteText(data); err != nil {
				return
			}
			incr("conn.send", 1)
		case _, ok := <-sub.tick:
			if !ok {
				return
			}
			if err := c.w.wsPing(); err != nil {
				return
			}
		}
	}
}

func (c *connection) present(f frame) {
	data, err := json.Marshal(f)
	if err != nil {
		c.log().WithError(err).Error("encoding frame")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		// The peer is not keeping up; drop it.
		mark("conn.overflow", 1)
		c.log().Warn("send buffer full; closing connection")
		c.closed = true
		close(c.send)
	}
}

func (c *connection) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
