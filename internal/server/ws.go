package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/coder/websocket/wsjson"

	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/session"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// Websocket commands.
const (
	opZoomIn    = "zoom_in"
	opZoomOut   = "zoom_out"
	opReset     = "reset"
	opRecompute = "recompute"
	opGradient  = "gradient"
	opInvert    = "invert"
)

// Websocket event types.
const (
	eventProgress = "progress"
	eventState    = "state"
	eventError    = "error"
)

// wsCommand is one client message on /sessions/{id}/ws.
type wsCommand struct {
	Op     string          `json:"op"`
	X      int             `json:"x,omitempty"`
	Y      int             `json:"y,omitempty"`
	Margin *session.Margin `json:"margin,omitempty"`
	Name   string          `json:"name,omitempty"`
	Width  int             `json:"width,omitempty"`
	Height int             `json:"height,omitempty"`
}

// wsEvent is one server message.
type wsEvent struct {
	Type  string         `json:"type"`
	Done  int            `json:"done,omitempty"`
	Total int            `json:"total,omitempty"`
	State *session.State `json:"state,omitempty"`
	Error *errorDetail   `json:"error,omitempty"`
}

// handleWatch drives a session over a websocket. Every command is answered
// with a state or error event; commands that compute also stream progress
// events while columns finish. Commands run one at a time per connection.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id, ex := chi.URLParam(r, "id"), explorerFrom(r)
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer c.CloseNow()

	ctx := r.Context()
	out := &wsWriter{conn: c}
	for {
		var cmd wsCommand
		if err := wsjson.Read(ctx, c, &cmd); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				s.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		if err := s.store.Touch(id); err != nil {
			_ = out.write(ctx, errorEvent(err))
			c.Close(websocket.StatusPolicyViolation, "session expired")
			return
		}
		ev := s.apply(ctx, ex, cmd, out)
		if err := out.write(ctx, ev); err != nil {
			return
		}
	}
}

func (s *Server) apply(ctx context.Context, ex session.Explorer, cmd wsCommand, out *wsWriter) wsEvent {
	res := ex.State().Resolution
	compute := false
	var err error

	switch cmd.Op {
	case opZoomIn:
		margin := session.Square(s.cfg.Defaults.Margin)
		if cmd.Margin != nil {
			margin = *cmd.Margin
		}
		err = ex.ZoomIn(cmd.X, cmd.Y, margin)
		compute = true
	case opZoomOut:
		compute = ex.ZoomOut()
	case opReset:
		ex.Reset()
		compute = true
	case opRecompute:
		if cmd.Width != 0 || cmd.Height != 0 {
			res = viewport.Resolution{Width: cmd.Width, Height: cmd.Height}
		}
		compute = true
	case opGradient:
		err = ex.SetGradient(cmd.Name)
	case opInvert:
		ex.ToggleInverted()
	default:
		err = errs.New(errs.ErrCodeInvalidInput, "unknown op %q", cmd.Op)
	}

	if err == nil && compute {
		last := -1
		progress := func(done, total int) {
			pct := done * 100 / total
			if pct == last {
				return
			}
			last = pct
			_ = out.write(ctx, wsEvent{Type: eventProgress, Done: done, Total: total})
		}
		_, err = ex.Recompute(session.WithProgress(ctx, out.serialize(progress)), res)
	}
	if err != nil {
		return errorEvent(err)
	}
	st := ex.State()
	return wsEvent{Type: eventState, State: &st}
}

func errorEvent(err error) wsEvent {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	return wsEvent{Type: eventError, Error: &errorDetail{Code: code, Message: errs.UserMessage(err)}}
}

// wsWriter serializes writes; progress arrives from worker goroutines.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) write(ctx context.Context, ev wsEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return wsjson.Write(ctx, w.conn, ev)
}

// serialize wraps fn so concurrent calls run one at a time.
func (w *wsWriter) serialize(fn func(done, total int)) func(done, total int) {
	var mu sync.Mutex
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		fn(done, total)
	}
}
