package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/db"
	"github.com/focusflow-app/focusflow/notifications"
)

const sseHeartbeatInterval = 30 * time.Second

// NotificationsStream handles GET /api/notifications/stream. It holds the
// connection open and pushes the user's events as server-sent events, with
// periodic heartbeats so proxies keep the connection alive.
func (h *Handlers) NotificationsStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events, unsubscribe := h.server.Notifications().Subscribe(currentUserID(c))
	defer unsubscribe()

	writeSSE(c, notifications.Event{
		Type:      notifications.EventConnected,
		Timestamp: db.NowMs(),
	})
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			writeSSE(c, event)
			c.Writer.Flush()
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		case <-h.server.ShutdownContext().Done():
			return
		}
	}
}

func writeSSE(c *gin.Context, event notifications.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Type, payload)
}
