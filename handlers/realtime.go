package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medislot/services/realtime"
)

type RealtimeHandler struct {
	Hub       *realtime.Hub
	Heartbeat time.Duration
}

// StreamHandler serves slot events as Server-Sent Events. Nothing about locks taken before the
// client connected is replayed.
func (h *RealtimeHandler) StreamHandler(c *gin.Context) {
	doctorID := c.Query("doctorId")
	date := c.Query("date")

	sub := h.Hub.Subscribe(doctorID, date)
	defer sub.Close()

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	logger := getLogger(c)
	logger.Debug("realtime viewer connected", zap.String("doctorId", doctorID), zap.String("date", date))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(evt.Type, evt)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
	logger.Debug("realtime viewer disconnected", zap.String("doctorId", doctorID), zap.String("date", date))
}
