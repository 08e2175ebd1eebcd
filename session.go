package main

// Views a frame can describe.
const (
	viewName     = "name"
	viewRooms    = "rooms"
	viewChat     = "chat"
	viewNotFound = "not_found"
	viewRedirect = "redirect"
)

// Actions a client can send.
const (
	actionSetName    = "set_name"
	actionCreateRoom = "create_room"
	actionSend       = "send"
)

// frame is the complete renderable state of a session. Sessions present a
// new frame after every change.
type frame struct {
	View       string     `json:"view"`
	User       string     `json:"user,omitempty"`
	Room       string     `json:"room,omitempty"`
	Rooms      []roomInfo `json:"rooms,omitempty"`
	Messages   []*message `json:"messages,omitempty"`
	Alert      *alert     `json:"alert,omitempty"`
	ClearInput bool       `json:"clear_input,omitempty"`
	Location   string     `json:"location,omitempty"`
}

// alert is shown once; it is not repeated on the next frame.
type alert struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type action struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type presenter interface {
	present(f frame)
}

// session is driven by the transport: enter once, act per user action,
// close once on disconnect. warn reports an action the transport refused.
type session interface {
	enter()
	act(a action) error
	warn(text string)
	close()
}

const throttledText = "You are sending too fast. Slow down and try again."

func errorAlert(text string) *alert {
	return &alert{Level: "error", Text: text}
}

func successAlert(text string) *alert {
	return &alert{Level: "success", Text: text}
}
