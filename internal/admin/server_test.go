package admin

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"netsim-dashboard/internal/render"
	"netsim-dashboard/internal/sim"
	"netsim-dashboard/internal/topology"
)

const testConfigBase = "https://files.example.com/configs"

func newTestServer(t *testing.T, hub *Hub) (*Server, *sim.ManualScheduler) {
	t.Helper()
	snap := topology.Default()
	views, err := render.New(testConfigBase)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	sched := sim.NewManualScheduler()
	ctrl := sim.NewController(snap, sim.DefaultSettings(), nil, nil, sched, rand.New(rand.NewSource(1)), func() time.Time { return time.Unix(0, 0) })
	t.Cleanup(ctrl.Close)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(ctrl, snap, views, hub, Options{Logger: log}), sched
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}

func TestIndexRendersPartials(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status OK, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"Simulation: Stopped",
		`data-device="SW1"`,
		"Missing IP Configuration",
		`id="packetsSent">303<`,
		`id="packetLoss">1.3%<`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
	for _, re := range []string{
		`TOAST_VISIBLE_MS =\s*3000\s*;`,
		`TOAST_FADE_MS =\s*300\s*;`,
		`USE_WEBSOCKET =\s*false\s*;`,
	} {
		if !regexp.MustCompile(re).MatchString(body) {
			t.Errorf("index script missing %s", re)
		}
	}
	if !strings.Contains(body, `id="stopSimulation" class="btn btn--outline" disabled`) {
		t.Errorf("stop button should start disabled")
	}
}

func TestHandleSummary(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/summary")
	var data struct {
		Summary        topology.Summary `json:"network_summary"`
		SeverityCounts map[string]int   `json:"severity_counts"`
	}
	decode(t, w, &data)
	if data.Summary.TotalNodes != 3 || data.Summary.TopologyHealth != 75 {
		t.Errorf("unexpected summary %+v", data.Summary)
	}
	if data.SeverityCounts["medium"] != 3 || data.SeverityCounts["high"] != 1 {
		t.Errorf("unexpected severity counts %v", data.SeverityCounts)
	}
}

func TestHandleDevicesFilter(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/devices?type=router")
	var nodes []topology.Node
	decode(t, w, &nodes)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 routers, got %d", len(nodes))
	}

	w = do(t, s, http.MethodGet, "/fragments/devices?search=sw")
	if !strings.Contains(w.Body.String(), "SW1") || strings.Contains(w.Body.String(), `data-device="R1"`) {
		t.Errorf("unexpected device fragment %q", w.Body.String())
	}
}

func TestHandleDeviceNotFound(t *testing.T) {
	s, _ := newTestServer(t, nil)
	for _, path := range []string{"/api/devices/R9", "/api/devices/R9/details", "/api/devices/R9/config"} {
		w := do(t, s, http.MethodGet, path)
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, w.Code)
		}
		var e map[string]string
		decode(t, w, &e)
		if e["error"] != "not_found" {
			t.Errorf("%s: unexpected error body %v", path, e)
		}
	}
}

func TestHandleDeviceDetailsAndConfig(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/devices/R1/details")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status OK, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), testConfigBase+"/768153cc.cfg") {
		t.Errorf("details missing config link: %q", w.Body.String())
	}

	w = do(t, s, http.MethodGet, "/api/devices/SW1/config")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != testConfigBase+"/40f2daf0.cfg" {
		t.Errorf("unexpected redirect %q", loc)
	}

	w = do(t, s, http.MethodGet, "/api/devices/R2/overlay")
	if !strings.Contains(w.Body.String(), "10.0.0.2") {
		t.Errorf("overlay missing interface address: %q", w.Body.String())
	}
}

func TestSimulationLifecycle(t *testing.T) {
	s, sched := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/api/simulation/start")
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected status OK, got %d", w.Code)
	}
	var st sim.Status
	decode(t, w, &st)
	if !st.State.Running || st.Controls.Start || !st.Controls.Stop || !st.Controls.Inject {
		t.Fatalf("unexpected status after start %+v", st)
	}

	sched.Advance(3 * time.Second)
	w = do(t, s, http.MethodGet, "/api/simulation")
	decode(t, w, &st)
	if st.State.ElapsedSeconds != 3 {
		t.Errorf("expected 3s elapsed, got %d", st.State.ElapsedSeconds)
	}

	w = do(t, s, http.MethodGet, "/fragments/status")
	if w.Body.String() != `<span class="status-dot running"></span>Simulation: Running` {
		t.Errorf("unexpected status fragment %q", w.Body.String())
	}

	w = do(t, s, http.MethodPost, "/api/simulation/stop")
	decode(t, w, &st)
	if st.State.Running || !st.Controls.Start || st.Controls.Inject || st.Controls.Restore {
		t.Errorf("unexpected status after stop %+v", st)
	}
}

func TestFaultInjectionUpdatesTopology(t *testing.T) {
	s, sched := newTestServer(t, nil)
	do(t, s, http.MethodPost, "/api/simulation/start")

	w := do(t, s, http.MethodPost, "/api/simulation/inject-fault")
	if w.Code != http.StatusAccepted {
		t.Fatalf("inject: expected 202, got %d", w.Code)
	}
	var st sim.Status
	decode(t, w, &st)
	if st.PendingAction != sim.ActionInjectFault {
		t.Errorf("expected pending inject, got %q", st.PendingAction)
	}

	sched.Advance(1500 * time.Millisecond)
	w = do(t, s, http.MethodGet, "/api/topology")
	var topo struct {
		Nodes []topology.Node `json:"nodes"`
		Links []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"links"`
	}
	decode(t, w, &topo)
	if len(topo.Nodes) != 3 || len(topo.Links) != 1 {
		t.Fatalf("unexpected topology %+v", topo)
	}
	if topo.Links[0].ID != "R1-R2" || topo.Links[0].Status != topology.StatusDown {
		t.Errorf("expected R1-R2 down, got %+v", topo.Links[0])
	}

	w = do(t, s, http.MethodPost, "/api/simulation/restore-fault")
	if w.Code != http.StatusAccepted {
		t.Fatalf("restore: expected 202, got %d", w.Code)
	}
	sched.Advance(time.Second)
	w = do(t, s, http.MethodGet, "/api/topology")
	decode(t, w, &topo)
	if topo.Links[0].Status != topology.StatusUp {
		t.Errorf("expected R1-R2 up after restore, got %q", topo.Links[0].Status)
	}
}

func TestSimulationRequiresPost(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/simulation/start")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestHandleExport(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/topology/export")
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "topology_analysis.json") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	var a topology.Analysis
	decode(t, w, &a)
	if len(a.Nodes) != 3 || len(a.Issues) != 4 {
		t.Errorf("unexpected analysis %+v", a)
	}
}

func TestFragments(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/fragments/issues?severity=high")
	body := w.Body.String()
	if strings.Count(body, "issue-card") == 0 || strings.Contains(body, "Missing IP Configuration") {
		t.Errorf("unexpected issue fragment %q", body)
	}

	w = do(t, s, http.MethodGet, "/fragments/device-stats")
	body = w.Body.String()
	if strings.Index(body, "R1") > strings.Index(body, "SW1") {
		t.Errorf("device stats not ordered: %q", body)
	}
}

func TestWebSocketRouteOnlyWithHub(t *testing.T) {
	s, _ := newTestServer(t, nil)
	if w := do(t, s, http.MethodGet, "/ws"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without hub, got %d", w.Code)
	}
}
