package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	gonanoid "github.com/jaevor/go-nanoid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const sessionCookie = "chathub_session"

// server owns the process-wide state every session is built from.
type server struct {
	cfg      config
	hub      *hub
	names    *names
	rooms    *roomStore
	ticker   *mTicker
	upgrader *websocket.Upgrader
	newKey   func() string
}

func newServer(cfg config) (*server, error) {
	newKey, err := gonanoid.Standard(21)
	if err != nil {
		return nil, err
	}
	h := newHub()
	s := &server{
		cfg:    cfg,
		hub:    h,
		names:  newNames(),
		rooms:  newRoomStore(h),
		ticker: newMTicker(cfg.PingPeriod),
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		newKey: newKey,
	}
	if cfg.Origin != "" {
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			return r.Header.Get("Origin") == cfg.Origin
		}
	}
	return s, nil
}

func (s *server) close() {
	s.ticker.stop()
}

func newHandler(s *server) http.Handler {
	r := mux.NewRouter()

	// Websocket sessions
	r.Path("/ws/lobby").HandlerFunc(s.serveLobby)
	r.Path("/ws/room/{room}").HandlerFunc(s.serveRoom)

	// Pages
	r.Methods("GET").Path("/").HandlerFunc(s.lobbyPage)
	r.Methods("GET").Path("/room/{room}").HandlerFunc(s.roomPage)

	r.Methods("POST").Path("/logout").HandlerFunc(s.logout)
	r.Methods("GET").Path("/metrics").HandlerFunc(s.metrics)

	return r
}

// sessionKey returns the caller's session key, minting one when the
// request carries none. A fresh key comes with the cookie to set.
func (s *server) sessionKey(r *http.Request) (string, *http.Cookie) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	key := s.newKey()
	return key, &http.Cookie{
		Name:     sessionCookie,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *server) upgrade(w http.ResponseWriter, r *http.Request, cookie *http.Cookie) (*connection, bool) {
	var header http.Header
	if cookie != nil {
		header = http.Header{"Set-Cookie": {cookie.String()}}
	}
	ws, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		logger.WithField("remote", r.RemoteAddr).WithError(err).Debug("websocket upgrade failed")
		return nil, false
	}
	var limiter *rate.Limiter
	if s.cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.Rate), s.cfg.Burst)
	}
	return newConnection(websocketInteractor{ws: ws}, s.ticker, limiter, r.RemoteAddr), true
}

func (s *server) serveLobby(w http.ResponseWriter, r *http.Request) {
	key, cookie := s.sessionKey(r)
	c, ok := s.upgrade(w, r, cookie)
	if !ok {
		return
	}
	c.session = newLobbySession(key, s.names, s.rooms, s.hub, c)
	c.run()
}

func (s *server) serveRoom(w http.ResponseWriter, r *http.Request) {
	key, cookie := s.sessionKey(r)
	c, ok := s.upgrade(w, r, cookie)
	if !ok {
		return
	}
	c.session = newChatSession(key, mux.Vars(r)["room"], s.names, s.rooms, s.hub, c)
	c.run()
}

func (s *server) lobbyPage(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, templateArgs{Title: "Chat Rooms", Socket: "/ws/lobby"})
}

func (s *server) roomPage(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	s.page(w, r, templateArgs{Title: room, Socket: "/ws/room/" + room})
}

func (s *server) page(w http.ResponseWriter, r *http.Request, args templateArgs) {
	if _, cookie := s.sessionKey(r); cookie != nil {
		http.SetCookie(w, cookie)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := webTemplate.Execute(w, args); err != nil {
		logger.WithFields(logrus.Fields{"remote": r.RemoteAddr, "page": args.Title}).WithError(err).Warn("rendering page")
	}
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.names.release(c.Value)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) metrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	m.writeOnce(w)
}
