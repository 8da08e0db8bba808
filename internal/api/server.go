// Package api exposes the rendering pipeline over HTTP.
//
// The server accepts chart specs in TOML and returns rendered frames as SVG
// or JSON. It is a thin shell: all semantics live in pkg/config and
// pkg/pipeline.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/chartpipe/pkg/cache"
	"github.com/matzehuels/chartpipe/pkg/config"
	"github.com/matzehuels/chartpipe/pkg/errors"
	"github.com/matzehuels/chartpipe/pkg/pipeline"
	"github.com/matzehuels/chartpipe/pkg/render"
	"github.com/matzehuels/chartpipe/pkg/render/plan"
)

// maxSpecBytes bounds the request body; chart specs with inline data can be
// large but should never approach this.
const maxSpecBytes = 32 << 20

// clientIDHeader names the optional header that scopes a request's cache
// keys to one client, so tenants sharing a server never read each other's
// cached frames.
const clientIDHeader = "X-Client-ID"

// Server handles chart rendering requests. The cache, keyer, and stage
// registry are shared across requests (all read-only after init); each
// request gets its own scheduler, since a scheduler owns exactly one pass
// at a time and starting a new pass supersedes the previous one. Pass
// supersession is an option-update mechanism for a single chart, not
// cross-request concurrency control.
type Server struct {
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
}

// NewServer creates a server rendering through the given cache backend.
func NewServer(c cache.Cache, logger *log.Logger) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cache: c, keyer: cache.NewDefaultKeyer(), logger: logger}
}

// requestKeyer returns the cache keyer for one request: the shared keyer,
// wrapped in a per-client scope when the client identifies itself.
func (s *Server) requestKeyer(r *http.Request) cache.Keyer {
	if id := r.Header.Get(clientIDHeader); id != "" {
		return cache.NewScopedKeyer(s.keyer, "client:"+id+":")
	}
	return s.keyer
}

// Routes builds the HTTP routing table.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Get("/plan/{type}", s.handlePlan)
	return r
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRender renders a TOML chart spec from the request body. The format
// query parameter selects the output: "svg" (default) or "json".
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSpecBytes))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read request body"))
		return
	}

	chart, err := config.Parse(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := chart.State(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	sched := pipeline.NewScheduler(nil, s.cache, s.requestKeyer(r), s.logger)
	result, err := sched.Run(r.Context(), st)
	if err != nil {
		s.writeError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "svg":
		svg := render.RenderSVG(result.Frames,
			render.WithFrameSize(st.Width, st.Height),
			render.WithTitle(chart.Title))
		w.Header().Set("Content-Type", "image/svg+xml")
		if result.CacheHit {
			w.Header().Set("X-Cache", "hit")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(svg)
	case "json":
		data, err := render.RenderJSON(result.Frames,
			render.WithJSONPass(result.PassID),
			render.WithJSONFrameSize(st.Width, st.Height))
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	default:
		s.writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", r.URL.Query().Get("format")))
	}
}

// handlePlan returns the stage execution plan for a series type as an SVG
// diagram.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	dot := plan.ToDOT(nil, typ)
	svg, err := plan.RenderSVG(dot)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render plan"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps structured error codes to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidOption, errors.ErrCodeInvalidThreshold,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidDataset:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeTypeNotFound, errors.ErrCodeCoordNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeSource:
		status = http.StatusBadGateway
	}
	s.logger.Warn("request failed", "code", code, "err", err)
	writeJSON(w, status, errorResponse{Code: string(code), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
