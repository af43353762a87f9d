package sim

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"netsim-dashboard/internal/telemetry"
	"netsim-dashboard/internal/topology"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}
	if err := w.WriteStats(telemetry.StatsRow{ElapsedSeconds: 1}); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if _, ok := p.msgs[0].(statsMsg); !ok {
		t.Fatalf("expected statsMsg, got %T", p.msgs[0])
	}
	ev := telemetry.EventRow{Type: telemetry.EventStarted, Message: MsgStarted, Timestamp: time.Unix(0, 0).UTC()}
	if err := w.WriteEvent(ev); err != nil {
		t.Fatalf("event: %v", err)
	}
	lm, ok := p.msgs[1].(logMsg)
	if !ok || !strings.Contains(lm.line, MsgStarted) {
		t.Fatalf("expected logMsg with message, got %#v", p.msgs[1])
	}
	w.SetAdminStatus(true)
	if _, ok := p.msgs[2].(adminMsg); !ok {
		t.Fatalf("expected adminMsg, got %T", p.msgs[2])
	}
	w.SetActions(Actions{})
	if _, ok := p.msgs[3].(setActionsMsg); !ok {
		t.Fatalf("expected setActionsMsg, got %T", p.msgs[3])
	}
}

func TestTUIKeysRespectControls(t *testing.T) {
	m := newTUIModel(topology.Default(), "R1-R2")
	var calls []string
	mi, _ := m.Update(setActionsMsg{actions: Actions{
		Start:        func() { calls = append(calls, "start") },
		Stop:         func() { calls = append(calls, "stop") },
		InjectFault:  func() { calls = append(calls, "inject") },
		RestoreFault: func() { calls = append(calls, "restore") },
	}})
	m = mi.(tuiModel)

	// Only start is enabled initially.
	for _, r := range []rune{'x', 'f', 'r'} {
		if _, cmd := m.Update(keyMsg(r)); cmd != nil {
			t.Fatalf("key %q should be disabled", r)
		}
	}
	_, cmd := m.Update(keyMsg('s'))
	if cmd == nil {
		t.Fatalf("start should be enabled")
	}
	cmd()

	mi, _ = m.Update(statsMsg{telemetry.StatsRow{Running: true, Controls: startedControls(false)}})
	m = mi.(tuiModel)
	if _, cmd := m.Update(keyMsg('s')); cmd != nil {
		t.Fatalf("start should be disabled while running")
	}
	_, cmd = m.Update(keyMsg('f'))
	cmd()
	_, cmd = m.Update(keyMsg('x'))
	cmd()
	if strings.Join(calls, ",") != "start,inject,stop" {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestTUIHeaderShowsStats(t *testing.T) {
	m := newTUIModel(topology.Default(), "R1-R2")
	if !strings.Contains(m.header, "303") || !strings.Contains(m.header, "1.3%") {
		t.Fatalf("initial counters missing from header: %q", m.header)
	}
	if !strings.Contains(m.header, "SW1") {
		t.Fatalf("device table missing from header: %q", m.header)
	}
	mi, _ := m.Update(statsMsg{telemetry.StatsRow{Running: true, ElapsedSeconds: 7, TotalSent: 310, TotalReceived: 305, LossPercent: 1.6, FaultInjected: true}})
	m = mi.(tuiModel)
	for _, want := range []string{"RUNNING", "7s", "310", "1.6%", "down"} {
		if !strings.Contains(m.header, want) {
			t.Fatalf("header missing %q: %q", want, m.header)
		}
	}
}

func TestWrapToggle(t *testing.T) {
	m := newTUIModel(nil, "R1-R2")
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 40})
	m = mi.(tuiModel)
	long := "one two three four five six"
	mi, _ = m.Update(logMsg{line: long})
	m = mi.(tuiModel)
	lines := strings.Split(m.vp.View(), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("expected single line before wrap")
	}
	mi, _ = m.Update(keyMsg('w'))
	m = mi.(tuiModel)
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	lines = strings.Split(m.vp.View(), "\n")
	if strings.TrimSpace(lines[1]) == "" {
		t.Fatalf("expected wrapped content on second line")
	}
}

func TestScrollToggle(t *testing.T) {
	m := newTUIModel(nil, "R1-R2")
	m.vp.Height = 1
	m.vp.Width = 20
	mi, _ := m.Update(logMsg{line: "l1"})
	m = mi.(tuiModel)
	mi, _ = m.Update(logMsg{line: "l2"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(keyMsg('a'))
	m = mi.(tuiModel)
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	mi, _ = m.Update(logMsg{line: "l3"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset unchanged, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = mi.(tuiModel)
	if m.vp.YOffset != 0 {
		t.Fatalf("expected YOffset 0 after scrolling up, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(keyMsg('a'))
	m = mi.(tuiModel)
	if want := len(m.logs) - m.vp.Height; m.vp.YOffset != want {
		t.Fatalf("expected YOffset %d, got %d", want, m.vp.YOffset)
	}
}

func TestHelpView(t *testing.T) {
	m := newTUIModel(nil, "R1-R2")
	mi, _ := m.Update(keyMsg('?'))
	m = mi.(tuiModel)
	if !strings.Contains(m.View(), "inject a fault on R1-R2") {
		t.Fatalf("help not shown: %q", m.View())
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = mi.(tuiModel)
	if m.help {
		t.Fatalf("help not closed")
	}
}
