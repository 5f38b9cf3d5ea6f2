package sse

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// Time between keepalive pings
	pingPeriod = 15 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client represents a connected SSE client
type Client struct {
	id          string
	connectedAt time.Time
	send        chan []byte
}

// NewClient creates a new SSE client with a random id
func NewClient() *Client {
	return &Client{
		id:          uuid.NewString(),
		connectedAt: time.Now(),
		send:        make(chan []byte, sendBufferSize),
	}
}

// ID returns the client id used in logs
func (c *Client) ID() string {
	return c.id
}

// ServeSSE streams hub events to the client until it disconnects or the hub
// closes. snapshot is called after registration and its messages are written
// first, so the view starts from current state without missing a change.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, snapshot func() [][]byte) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := NewClient()
	if !hub.Register(client) {
		http.Error(w, "Event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	// Ask browsers to reconnect after 3s if the stream drops
	_, _ = w.Write([]byte("retry: 3000\n\n"))
	_, _ = w.Write(formatSSEMessage("connected", `{"client_id":"`+client.id+`"}`))
	if snapshot != nil {
		for _, message := range snapshot() {
			_, _ = w.Write(message)
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
