package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ptpcell/placement-backend/internal/service"
	"github.com/rs/zerolog"
)

const (
	refreshInterval   = 5 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second
)

var pingPayload = []byte(`{"type":"ping"}`)

// MonitorHandler streams an event's live quiz state to the admin dashboard.
type MonitorHandler struct {
	monitorService *service.MonitorService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(monitorService *service.MonitorService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorEventSSE godoc
// GET /api/v1/admin/events/:id/monitor
// Server-sent events: a snapshot on attach, each quiz signal as it happens,
// and a refreshed snapshot while anything is moving.
func (h *MonitorHandler) MonitorEventSSE(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	reqCtx := c.Request.Context()

	snap, err := h.monitorService.Snapshot(reqCtx, eventID)
	if err != nil {
		fail(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.SSEvent("message", gin.H{"type": "snapshot", "data": snap})
	c.Writer.Flush()

	pubsub := h.monitorService.Subscribe(reqCtx, eventID)
	defer pubsub.Close()
	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()
	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	// A live question must be re-read to notice its expiry, so it counts as activity.
	dirty := snap.Event != nil && snap.Event.QuizActive

	h.log.Info().Str("event_id", eventID.String()).Msg("Admin attached to live monitor SSE")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("event_id", eventID.String()).Msg("Admin disconnected from live monitor SSE")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
			dirty = true

		case <-refreshTicker.C:
			if !dirty {
				continue
			}
			dirty = h.sendRefresh(c, reqCtx, eventID)

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

// sendRefresh writes a fresh snapshot and reports whether the quiz is still live.
func (h *MonitorHandler) sendRefresh(c *gin.Context, parent context.Context, eventID uuid.UUID) bool {
	ctx, cancel := context.WithTimeout(parent, refreshTimeout)
	defer cancel()

	snap, err := h.monitorService.Snapshot(ctx, eventID)
	if err != nil {
		h.log.Warn().Err(err).Str("event_id", eventID.String()).Msg("Failed to refresh monitor snapshot")
		return true
	}
	c.SSEvent("message", gin.H{"type": "refresh", "data": snap})
	c.Writer.Flush()
	return snap.Event.QuizActive
}
