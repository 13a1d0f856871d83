package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
	ActionStatus     Action = "status"
	ActionPing       Action = "ping"
)

// Request is a console command. QuestionID is only read by activate.
type Request struct {
	Action     Action `json:"action"`
	QuestionID string `json:"question_id,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError       Event = "error"
	EventSnapshot    Event = "snapshot"
	EventSignal      Event = "signal"
	EventActivated   Event = "activated"
	EventDeactivated Event = "deactivated"
	EventPong        Event = "pong"
)

// DataResponse carries a typed payload under "data".
type DataResponse struct {
	Event Event `json:"event"`
	Data  any   `json:"data"`
}

// SignalResponse forwards a raw quiz signal without re-encoding it.
type SignalResponse struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
