package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// heartbeatInterval keeps idle push connections alive through
	// proxies.
	heartbeatInterval = 15 * time.Second
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second
)

// wireEvent is the JSON frame pushed over both transports.
type wireEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from other origins; the bearer token is the
	// gate, not the Origin header.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleStream upgrades to a websocket and pushes registry events until
// the client goes away.
func handleStream(hub *Hub, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		events, cancel := hub.Subscribe()
		defer cancel()

		// Reader goroutine: we never expect client frames, but reading
		// is how websocket close is detected.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(wireEvent{Event: "connected", Data: gin.H{"type": "connected"}}); err != nil {
			return
		}

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-c.Request.Context().Done():
				return
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case evt, ok := <-events:
				if !ok {
					return
				}
				name, data := eventPayload(evt)
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(wireEvent{Event: name, Data: data}); err != nil {
					return
				}
			}
		}
	}
}

// handleSSE streams registry events as server-sent events.
func handleSSE(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		writeSSE(c.Writer, "connected", gin.H{"type": "connected"})
		c.Writer.Flush()

		events, cancel := hub.Subscribe()
		defer cancel()

		ctx := c.Request.Context()
		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", gin.H{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case evt, ok := <-events:
				if !ok {
					return
				}
				name, data := eventPayload(evt)
				writeSSE(c.Writer, name, data)
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
