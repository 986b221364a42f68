package server

import (
	"image/png"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mandelscope/pkg/buildinfo"
	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/gradient"
	"github.com/matzehuels/mandelscope/pkg/grid"
	"github.com/matzehuels/mandelscope/pkg/session"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/gradients", s.handleGradients)
	r.Get("/regions", s.handleRegions)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.loadSession)
			r.Get("/", s.handleState)
			r.Delete("/", s.handleDelete)
			r.Post("/recompute", s.handleRecompute)
			r.Post("/zoom-in", s.handleZoomIn)
			r.Post("/zoom-out", s.handleZoomOut)
			r.Post("/reset", s.handleReset)
			r.Put("/gradient", s.handleGradient)
			r.Post("/invert", s.handleInvert)
			r.Get("/buffer", s.handleBuffer)
			r.Get("/frame.png", s.handleFrame)
			r.Get("/ws", s.handleWatch)
		})
	})
	return r
}

// =============================================================================
// Response Types
// =============================================================================

type sessionResponse struct {
	ID      string        `json:"id,omitempty"`
	State   session.State `json:"state"`
	Changed *bool         `json:"changed,omitempty"`
}

type zoomRequest struct {
	X      int             `json:"x"`
	Y      int             `json:"y"`
	Margin *session.Margin `json:"margin,omitempty"`
}

type gradientRequest struct {
	Name string `json:"name"`
}

type resolutionRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// =============================================================================
// Global Routes
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status   string         `json:"status"`
		Sessions int            `json:"sessions"`
		Build    buildinfo.Info `json:"build"`
	}{"ok", s.store.Len(), buildinfo.Current()})
}

func (s *Server) handleGradients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gradient.Default().Names())
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	regions := make([]viewport.Region, 0, len(viewport.Regions))
	for _, name := range viewport.RegionNames() {
		regions = append(regions, viewport.Regions[name])
	}
	writeJSON(w, http.StatusOK, regions)
}

// =============================================================================
// Session Lifecycle
// =============================================================================

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries := s.store.List()
	out := make([]sessionResponse, len(entries))
	for i, e := range entries {
		out[i] = sessionResponse{ID: e.ID, State: e.Explorer.State()}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreate starts a session. The body holds any subset of the render
// options; missing fields come from the server defaults, and a field sent
// explicitly is validated as sent.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	opts := s.cfg.Defaults
	if err := decodeJSON(w, r, &opts); err != nil {
		writeError(w, err)
		return
	}
	if err := opts.Validate(); err != nil {
		writeError(w, err)
		return
	}
	ex, err := session.Open(opts.Precise, opts.Resolution(), opts.Gradient, opts.MaxIters, opts.Inverted,
		session.WithRunner(s.cfg.Runner), session.WithRegion(opts.Region))
	if err != nil {
		writeError(w, err)
		return
	}
	e := s.store.Add(ex)
	s.logger.Info("session created", "id", e.ID, "numeric", ex.State().Numeric, "region", opts.Region)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: e.ID, State: ex.State()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{ID: chi.URLParam(r, "id"), State: explorerFrom(r).State()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Navigation
// =============================================================================

// handleRecompute computes the active rectangle, at the body's resolution
// when one is given.
func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	ex := explorerFrom(r)
	res := ex.State().Resolution
	var req resolutionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Width != 0 || req.Height != 0 {
		res = viewport.Resolution{Width: req.Width, Height: req.Height}
	}
	s.recomputeAndRespond(w, r, ex, res, nil)
}

func (s *Server) handleZoomIn(w http.ResponseWriter, r *http.Request) {
	ex := explorerFrom(r)
	var req zoomRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	margin := session.Square(s.cfg.Defaults.Margin)
	if req.Margin != nil {
		margin = *req.Margin
	}
	if err := ex.ZoomIn(req.X, req.Y, margin); err != nil {
		writeError(w, err)
		return
	}
	s.recomputeAndRespond(w, r, ex, ex.State().Resolution, nil)
}

func (s *Server) handleZoomOut(w http.ResponseWriter, r *http.Request) {
	ex := explorerFrom(r)
	changed := ex.ZoomOut()
	if !changed {
		writeJSON(w, http.StatusOK, sessionResponse{ID: chi.URLParam(r, "id"), State: ex.State(), Changed: &changed})
		return
	}
	s.recomputeAndRespond(w, r, ex, ex.State().Resolution, &changed)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ex := explorerFrom(r)
	ex.Reset()
	s.recomputeAndRespond(w, r, ex, ex.State().Resolution, nil)
}

func (s *Server) recomputeAndRespond(w http.ResponseWriter, r *http.Request, ex session.Explorer, res viewport.Resolution, changed *bool) {
	if _, err := ex.Recompute(r.Context(), res); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: chi.URLParam(r, "id"), State: ex.State(), Changed: changed})
}

// =============================================================================
// Coloring
// =============================================================================

func (s *Server) handleGradient(w http.ResponseWriter, r *http.Request) {
	ex := explorerFrom(r)
	var req gradientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := ex.SetGradient(req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: chi.URLParam(r, "id"), State: ex.State()})
}

func (s *Server) handleInvert(w http.ResponseWriter, r *http.Request) {
	ex := explorerFrom(r)
	ex.ToggleInverted()
	writeJSON(w, http.StatusOK, sessionResponse{ID: chi.URLParam(r, "id"), State: ex.State()})
}

// =============================================================================
// Output
// =============================================================================

// handleBuffer serves the installed buffer in its binary encoding.
func (s *Server) handleBuffer(w http.ResponseWriter, r *http.Request) {
	buf, err := s.ensureBuffer(r, explorerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := buf.MarshalBinary()
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "encode buffer"))
		return
	}
	h := w.Header()
	h.Set("Content-Type", "application/octet-stream")
	h.Set("X-Width", strconv.Itoa(buf.Width()))
	h.Set("X-Height", strconv.Itoa(buf.Height()))
	h.Set("X-Max-Iters", strconv.Itoa(buf.MaxIters()))
	_, _ = w.Write(data)
}

// handleFrame streams the colored frame as PNG. It is encoded straight to
// the response and never stored.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	ex := explorerFrom(r)
	if _, err := s.ensureBuffer(r, ex); err != nil {
		writeError(w, err)
		return
	}
	img := ex.Image()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, img); err != nil {
		s.logger.Warn("frame encode failed", "error", err)
	}
}

// ensureBuffer returns the installed buffer, computing it when there is none,
// when the width/height query differs from it, or when it belongs to a
// rectangle that is no longer active.
func (s *Server) ensureBuffer(r *http.Request, ex session.Explorer) (*grid.Buffer, error) {
	st := ex.State()
	res, err := queryResolution(r, st.Resolution)
	if err != nil {
		return nil, err
	}
	if buf := ex.Buffer(); buf != nil && buf.Resolution() == res && !st.Stale {
		return buf, nil
	}
	return ex.Recompute(r.Context(), res)
}

func queryResolution(r *http.Request, def viewport.Resolution) (viewport.Resolution, error) {
	res := def
	q := r.URL.Query()
	for _, p := range []struct {
		key string
		dst *int
	}{{"width", &res.Width}, {"height", &res.Height}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return def, errs.Wrap(errs.ErrCodeInvalidResolution, err, "%s=%q", p.key, v)
		}
		*p.dst = n
	}
	return res, res.Validate()
}
