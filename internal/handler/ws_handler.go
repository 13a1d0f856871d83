package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ptpcell/placement-backend/internal/logger"
	"github.com/ptpcell/placement-backend/internal/middleware"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/ptpcell/placement-backend/internal/service"
	ws "github.com/ptpcell/placement-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins.
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler runs the admin quiz console: commands in, live signals out.
type WSHandler struct {
	activationService *service.ActivationService
	monitorService    *service.MonitorService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	activationService *service.ActivationService,
	monitorService *service.MonitorService,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		activationService: activationService,
		monitorService:    monitorService,
		log:               logger.Component(log, "ws_handler"),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// QuizConsole godoc
// WS /ws/v1/admin/events/:id/console?token=...
// Sends a snapshot on connect, then every quiz signal for the event.
// Accepts activate, deactivate, status and ping actions.
func (h *WSHandler) QuizConsole(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	if !claims.HasPermission(model.PermissionQuizControl) {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	snap, err := h.monitorService.Snapshot(c.Request.Context(), eventID)
	if err != nil {
		fail(c, err)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().Int("admin_id", claims.UserID).Str("event_id", eventID.String()).Logger()
	wsLog.Info().Msg("Admin connected to quiz console")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn.WriteData(ws.EventSnapshot, snap)
	go h.forwardSignals(ctx, conn, eventID, wsLog)

	for {
		var msg ws.Request
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionActivate:
			h.handleActivate(ctx, conn, eventID, msg.QuestionID)
		case ws.ActionDeactivate:
			if err := h.activationService.Deactivate(ctx, eventID); err != nil {
				conn.WriteError(consoleError(err))
				continue
			}
			conn.WriteData(ws.EventDeactivated, gin.H{"event_id": eventID})
		case ws.ActionStatus:
			snap, err := h.monitorService.Snapshot(ctx, eventID)
			if err != nil {
				conn.WriteError(consoleError(err))
				continue
			}
			conn.WriteData(ws.EventSnapshot, snap)
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

func (h *WSHandler) handleActivate(ctx context.Context, conn *ws.Conn, eventID uuid.UUID, rawQID string) {
	questionID, err := uuid.Parse(rawQID)
	if err != nil {
		conn.WriteError("invalid question_id")
		return
	}
	act, err := h.activationService.Activate(ctx, eventID, questionID)
	if err != nil {
		conn.WriteError(consoleError(err))
		return
	}
	conn.WriteData(ws.EventActivated, gin.H{
		"event_id":          act.EventID,
		"question_id":       act.QuestionID,
		"activated_at":      act.ActivatedAt,
		"remaining_seconds": h.activationService.Remaining(act),
	})
}

// forwardSignals relays the event's pub/sub channel until ctx is cancelled.
func (h *WSHandler) forwardSignals(ctx context.Context, conn *ws.Conn, eventID uuid.UUID, log zerolog.Logger) {
	pubsub := h.monitorService.Subscribe(ctx, eventID)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteTyped(ws.SignalResponse{Event: ws.EventSignal, Data: []byte(msg.Payload)}); err != nil {
				log.Debug().Err(err).Msg("Signal forward stopped")
				return
			}
		}
	}
}

func consoleError(err error) string {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, service.ErrNotFound):
		return "not found"
	default:
		return "internal error"
	}
}
