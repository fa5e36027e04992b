package ws

import (
	"chat-rooms/runtime"
	"html/template"
	"net/http"
	"time"
)

var inspectTemplate = template.Must(template.New("inspect").Parse(`<!DOCTYPE html>
<html>
<head><title>Rooms</title></head>
<body>
<h1>Rooms</h1>
<p>Sampled at {{.SampledAt}}</p>
<table border="1" cellpadding="4">
<tr><th>Room</th><th>Users</th><th>Sessions</th><th>Subscribers</th><th>History</th><th>Dropped</th></tr>
{{range .Rooms}}<tr><td>{{.Name}}</td><td>{{.Users}}</td><td>{{.Sessions}}</td><td>{{.Subscribers}}</td><td>{{.History}}</td><td>{{.Dropped}}</td></tr>
{{end}}</table>
</body>
</html>
`))

type InspectPage struct {
	SampledAt string
	Rooms     []runtime.RoomStats
}

// Inspect GET /debug/rooms
// Renders the live state of every room for operators.
func (s *ChatServer) Inspect(w http.ResponseWriter, r *http.Request) {
	stats, err := s.roomManager.Stats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := InspectPage{SampledAt: time.Now().Format("15:04:05"), Rooms: stats}
	if err := inspectTemplate.Execute(w, page); err != nil {
		s.log.Warn("Rendering inspect page failed", "error", err)
	}
}
