package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"netsim-dashboard/internal/render"
	"netsim-dashboard/internal/sim"
	"netsim-dashboard/internal/topology"
)

//go:embed templates/index.html
var content embed.FS

// Options tune the page and server lifecycle.
type Options struct {
	ToastVisible time.Duration
	ToastFade    time.Duration
	// Listening, if set, is told when the server starts and stops accepting.
	Listening func(bool)
	Logger    *slog.Logger
}

// Server is the browser shell over the snapshot and the simulation controller.
type Server struct {
	Sim    *sim.Controller
	snap   *topology.Snapshot
	views  *render.Renderer
	hub    *Hub
	tpl    *template.Template
	opts   Options
	log    *slog.Logger
	router chi.Router
}

// NewServer builds the router. hub may be nil to disable the WebSocket stream.
func NewServer(ctrl *sim.Controller, snap *topology.Snapshot, views *render.Renderer, hub *Hub, opts Options) *Server {
	if opts.ToastVisible <= 0 {
		opts.ToastVisible = 3 * time.Second
	}
	if opts.ToastFade <= 0 {
		opts.ToastFade = 300 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{Sim: ctrl, snap: snap, views: views, hub: hub, tpl: tpl, opts: opts, log: opts.Logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	if s.hub != nil {
		r.Handle("/ws", s.hub)
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/topology", s.handleTopology)
		r.Get("/topology/export", s.handleExport)
		r.Get("/devices", s.handleDevices)
		r.Route("/devices/{id}", func(r chi.Router) {
			r.Get("/", s.handleDevice)
			r.Get("/details", s.handleDeviceDetails)
			r.Get("/overlay", s.handleNodeOverlay)
			r.Get("/config", s.handleDeviceConfig)
		})
		r.Get("/issues", s.handleIssues)
		r.Get("/recommendations", s.handleRecommendations)
		r.Route("/simulation", func(r chi.Router) {
			r.Get("/", s.handleSimulation)
			r.Get("/devices", s.handleSimulationDevices)
			r.Post("/start", s.handleStart)
			r.Post("/stop", s.handleStop)
			r.Post("/inject-fault", s.handleInjectFault)
			r.Post("/restore-fault", s.handleRestoreFault)
		})
	})
	r.Route("/fragments", func(r chi.Router) {
		r.Get("/devices", s.handleDeviceRowsFragment)
		r.Get("/issues", s.handleIssuesFragment)
		r.Get("/device-stats", s.handleDeviceStatsFragment)
		r.Get("/status", s.handleStatusFragment)
	})
	return r
}

// ServeHTTP makes the server usable as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 5 * time.Second}
	s.log.Info("admin server listening", "addr", ln.Addr().String())
	if s.opts.Listening != nil {
		s.opts.Listening(true)
		defer s.opts.Listening(false)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.hub != nil {
		s.hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("admin server stopped")
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}

type indexData struct {
	Summary         topology.Summary
	SeverityCounts  map[string]int
	Status          sim.Status
	DeviceRows      template.HTML
	IssueCards      template.HTML
	Recommendations template.HTML
	DeviceStats     template.HTML
	StatusIndicator template.HTML
	ToastVisibleMS  int64
	ToastFadeMS     int64
	WebSocket       bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.Status()
	data := indexData{
		Summary:        s.snap.Summary,
		SeverityCounts: s.snap.SeverityCounts(),
		Status:         st,
		ToastVisibleMS: s.opts.ToastVisible.Milliseconds(),
		ToastFadeMS:    s.opts.ToastFade.Milliseconds(),
		WebSocket:      s.hub != nil,
	}
	parts := []struct {
		dst *template.HTML
		fn  func(io.Writer) error
	}{
		{&data.DeviceRows, func(w io.Writer) error { return s.views.DeviceRows(w, s.snap.FilterDevices("", "")) }},
		{&data.IssueCards, func(w io.Writer) error { return s.views.IssueCards(w, s.snap.FilterIssues("", "")) }},
		{&data.Recommendations, func(w io.Writer) error { return s.views.RecommendationCards(w, s.snap.Recommendations) }},
		{&data.DeviceStats, func(w io.Writer) error { return s.views.DeviceStatCards(w, s.Sim.DeviceStats()) }},
		{&data.StatusIndicator, func(w io.Writer) error { return s.views.StatusIndicator(w, st.State.Running) }},
	}
	for _, p := range parts {
		h, err := render.HTML(p.fn)
		if err != nil {
			s.renderError(w, err)
			return
		}
		*p.dst = h
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		s.log.Error("render index", "err", err)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"network_summary": s.snap.Summary,
		"severity_counts": s.snap.SeverityCounts(),
	})
}

type linkView struct {
	topology.Link
	ID string `json:"id"`
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	links := make([]linkView, 0, len(s.snap.Links))
	for _, l := range s.snap.Links {
		lv := linkView{Link: l, ID: topology.LinkID(l)}
		lv.Status = s.Sim.LinkStatus(l)
		links = append(links, lv)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": s.snap.FilterDevices("", ""),
		"links": links,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="topology_analysis.json"`)
	if err := s.snap.WriteAnalysis(w); err != nil {
		s.log.Error("export topology", "err", err)
	}
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.snap.FilterDevices(q.Get("search"), q.Get("type")))
}

// device resolves the {id} URL parameter, writing a 404 if it is unknown.
func (s *Server) device(w http.ResponseWriter, r *http.Request) (topology.Node, bool) {
	id := chi.URLParam(r, "id")
	n, ok := s.snap.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "device not found: "+id)
	}
	return n, ok
}

func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	if n, ok := s.device(w, r); ok {
		writeJSON(w, http.StatusOK, n)
	}
}

func (s *Server) handleDeviceDetails(w http.ResponseWriter, r *http.Request) {
	n, ok := s.device(w, r)
	if !ok {
		return
	}
	s.fragment(w, func(w io.Writer) error { return s.views.DeviceDetails(w, n) })
}

func (s *Server) handleNodeOverlay(w http.ResponseWriter, r *http.Request) {
	n, ok := s.device(w, r)
	if !ok {
		return
	}
	s.fragment(w, func(w io.Writer) error { return s.views.NodeOverlay(w, n) })
}

func (s *Server) handleDeviceConfig(w http.ResponseWriter, r *http.Request) {
	n, ok := s.device(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, s.views.ConfigURL(n.ID), http.StatusFound)
}

func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.snap.FilterIssues(q.Get("severity"), q.Get("type")))
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snap.Recommendations)
}

func (s *Server) handleSimulation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Status())
}

func (s *Server) handleSimulationDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.DeviceStats())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Start())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Stop())
}

func (s *Server) handleInjectFault(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusAccepted, s.Sim.InjectFault())
}

func (s *Server) handleRestoreFault(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusAccepted, s.Sim.RestoreFault())
}

func (s *Server) handleDeviceRowsFragment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	nodes := s.snap.FilterDevices(q.Get("search"), q.Get("type"))
	s.fragment(w, func(w io.Writer) error { return s.views.DeviceRows(w, nodes) })
}

func (s *Server) handleIssuesFragment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	issues := s.snap.FilterIssues(q.Get("severity"), q.Get("type"))
	s.fragment(w, func(w io.Writer) error { return s.views.IssueCards(w, issues) })
}

func (s *Server) handleDeviceStatsFragment(w http.ResponseWriter, r *http.Request) {
	stats := s.Sim.DeviceStats()
	s.fragment(w, func(w io.Writer) error { return s.views.DeviceStatCards(w, stats) })
}

func (s *Server) handleStatusFragment(w http.ResponseWriter, r *http.Request) {
	running := s.Sim.Status().State.Running
	s.fragment(w, func(w io.Writer) error { return s.views.StatusIndicator(w, running) })
}

// fragment writes an HTML partial, or a JSON 500 if it fails to render.
func (s *Server) fragment(w http.ResponseWriter, fn func(io.Writer) error) {
	h, err := render.HTML(fn)
	if err != nil {
		s.renderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, string(h))
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	s.log.Error("render fragment", "err", err)
	writeError(w, http.StatusInternalServerError, "render_failed", "failed to render view")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": code, "message": msg})
}
