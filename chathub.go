// Package chathub serves multi-room chat over websockets.
//
//     chathub -addr=:8081
//
// Everything is as ephemeral as can be. Users, rooms and the last ten
// messages of each room live in memory and are lost on restart.
//
// Open the lobby in a browser to pick a display name and create rooms.
//     http://localhost:8081/
//
// Chat in a room by opening its page.
//     http://localhost:8081/room/Room_name
//
// Both pages talk to the server over a websocket (/ws/lobby and
// /ws/room/Room_name). The client sends actions as JSON
//     {"type": "set_name" | "create_room" | "send", "value": "..."}
// and receives the full state of its view as a JSON frame after every
// change.
//
// Names and room names match ^[A-Za-z0-9_-]+$ and are unique. Messages are
// sent to every member of the room, including the sender.
package main

import (
	"html/template"
)

type templateArgs struct {
	Title, Socket string
}

var webTemplate = template.Must(template.New("webTemplate").Parse(`
<html>
<head>
<title>chathub {{.Title}}</title>
<script type="text/javascript">
window.addEventListener("load", function() {
    var socket = {{.Socket}};
    var root = document.getElementById("view");
    var alerts = document.getElementById("alert");
    var input = document.getElementById("input");
    var form = document.getElementById("form");
    var action = null;

    function el(tag, text, cls) {
        var e = document.createElement(tag);
        if (text !== undefined) {
            e.textContent = text;
        }
        if (cls) {
            e.className = cls;
        }
        return e;
    }

    function line(m) {
        var d = el("div", undefined, "line " + m.kind);
        d.appendChild(el("strong", m.author));
        d.appendChild(el("span", new Date(m.timestamp * 1000).toLocaleString(), "time"));
        d.appendChild(el("div", m.kind === "message" ? m.body : "*" + m.body + "*", "body"));
        return d;
    }

    function render(f) {
        if (f.view === "redirect") {
            window.location = f.location;
            return;
        }
        if (f.alert) {
            alerts.className = f.alert.level;
            alerts.textContent = f.alert.text;
        }
        if (f.clear_input) {
            input.value = "";
        }
        root.innerHTML = "";
        form.style.display = "block";
        switch (f.view) {
        case "name":
            root.appendChild(el("h1", "Set User Name"));
            input.placeholder = "User Name";
            action = "set_name";
            break;
        case "rooms":
            root.appendChild(el("h1", "Chat Rooms"));
            root.appendChild(el("div", "You are '" + f.user + "'"));
            var table = el("table");
            var head = el("tr");
            head.appendChild(el("th", "Room Name"));
            head.appendChild(el("th", "User Chatting"));
            table.appendChild(head);
            (f.rooms || []).forEach(function(r) {
                var row = el("tr");
                var cell = el("td");
                var a = el("a", r.name);
                a.href = "/room/" + encodeURIComponent(r.name);
                cell.appendChild(a);
                row.appendChild(cell);
                row.appendChild(el("td", String(r.members)));
                table.appendChild(row);
            });
            root.appendChild(table);
            input.placeholder = "Room Name";
            action = "create_room";
            break;
        case "chat":
            root.appendChild(el("div", "You are '" + f.user + "'"));
            root.appendChild(el("h1", f.room));
            var log = el("div", undefined, "log");
            (f.messages || []).forEach(function(m) {
                log.appendChild(line(m));
            });
            root.appendChild(log);
            log.scrollTop = log.scrollHeight;
            input.placeholder = "Say something nice";
            action = "send";
            break;
        case "not_found":
            root.appendChild(el("h1", "Room not found"));
            root.appendChild(el("p", "No room named \"" + f.room + "\" found"));
            form.style.display = "none";
            action = null;
            break;
        }
    }

    if (!window["WebSocket"]) {
        alerts.textContent = "Your browser does not support WebSockets.";
        return;
    }
    var scheme = window.location.protocol === "https:" ? "wss://" : "ws://";
    var conn = new WebSocket(scheme + window.location.host + socket);
    conn.onclose = function() {
        alerts.className = "error";
        alerts.textContent = "Connection closed.";
    };
    conn.onmessage = function(evt) {
        render(JSON.parse(evt.data));
    };
    form.addEventListener("submit", function(e) {
        e.preventDefault();
        if (action) {
            conn.send(JSON.stringify({type: action, value: input.value}));
        }
    });
});
</script>
<style type="text/css">
body { font-family: sans-serif; margin: 1em; }
.log { height: 50vh; overflow: auto; border: 1px solid #ccc; padding: 0.5em; }
.time { color: gray; font-size: 75%; margin-left: 0.5em; }
.body { margin-left: 0.5em; }
.join .body { color: lime; }
.leave .body { color: red; }
.error { color: red; }
.success { color: lime; }
#form { display: none; margin-top: 1em; }
</style>
</head>
<body>
<p id="alert"></p>
<div id="view"></div>
<form id="form">
    <input type="text" id="input" size="64"/>
    <input type="submit" value="Send" />
</form>
</body>
</html>
`))
