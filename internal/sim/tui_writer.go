package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"netsim-dashboard/internal/telemetry"
	"netsim-dashboard/internal/topology"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a notification line for the viewport.
type logMsg struct{ line string }

// statsMsg carries the latest counters.
type statsMsg struct{ telemetry.StatsRow }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

type setActionsMsg struct{ actions Actions }

const maxLogLines = 1000

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleValue    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	styleOK       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleWarn     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleBad      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleDisabled = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
)

// TUIWriter renders simulation stats and notifications using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(snap *topology.Snapshot, faultLink string) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(snap, faultLink), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteStats implements StatsWriter.
func (w *TUIWriter) WriteStats(row telemetry.StatsRow) error {
	w.program.Send(statsMsg{row})
	return nil
}

// WriteStatsBatch outputs multiple stats rows.
func (w *TUIWriter) WriteStatsBatch(rows []telemetry.StatsRow) error {
	for _, r := range rows {
		_ = w.WriteStats(r)
	}
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(ev telemetry.EventRow) error {
	w.program.Send(logMsg{line: formatEventLine(ev)})
	return nil
}

// SetAdminStatus updates the admin UI indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// SetActions registers the controller operations bound to keys.
func (w *TUIWriter) SetActions(a Actions) {
	w.program.Send(setActionsMsg{actions: a})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

func formatEventLine(ev telemetry.EventRow) string {
	style := styleValue
	switch ev.Type {
	case telemetry.EventFaultInjected:
		style = styleBad
	case telemetry.EventFaultRestored, telemetry.EventStarted:
		style = styleOK
	case telemetry.EventFaultRequested:
		style = styleWarn
	}
	return fmt.Sprintf("%s %s", styleLabel.Render("["+ev.Timestamp.Format(time.RFC3339)+"]"), style.Render(ev.Message))
}

type tuiModel struct {
	snap         *topology.Snapshot
	faultLink    string
	table        table.Model
	vp           viewport.Model
	logs         []string
	stats        telemetry.StatsRow
	controls     telemetry.Controls
	actions      Actions
	admin        bool
	wrap         bool
	autoscroll   bool
	help         bool
	header       string
	headerHeight int
	height       int
}

func newTUIModel(snap *topology.Snapshot, faultLink string) tuiModel {
	cols := []table.Column{
		{Title: "Device", Width: 8},
		{Title: "Hostname", Width: 16},
		{Title: "Type", Width: 8},
		{Title: "Sent", Width: 8},
		{Title: "Received", Width: 10},
		{Title: "ARP", Width: 5},
		{Title: "Routes", Width: 7},
	}
	var rows []table.Row
	if snap != nil {
		for _, id := range snap.DeviceIDs() {
			n, _ := snap.Node(id)
			st := snap.Simulation.DeviceStats[id]
			rows = append(rows, table.Row{
				id, n.Hostname, n.Type,
				fmt.Sprint(st.PacketsSent), fmt.Sprint(st.PacketsReceived),
				fmt.Sprint(st.ARPTableSize), fmt.Sprint(st.RoutingTableSize),
			})
		}
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	m := tuiModel{
		snap:       snap,
		faultLink:  faultLink,
		table:      t,
		vp:         viewport.New(0, 0),
		controls:   initialControls(),
		autoscroll: true,
	}
	if snap != nil {
		st := InitialState(snap.Simulation)
		m.stats = telemetry.StatsRow{TotalSent: st.TotalSent, TotalReceived: st.TotalReceived, LossPercent: st.LossPercent()}
	}
	m.header = m.renderHeader()
	m.headerHeight = lipgloss.Height(m.header)
	return m
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.refreshHeader()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
			case "q", "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			return m, m.trigger(m.controls.Start, m.actions.Start)
		case "x":
			return m, m.trigger(m.controls.Stop, m.actions.Stop)
		case "f":
			return m, m.trigger(m.controls.Inject, m.actions.InjectFault)
		case "r":
			return m, m.trigger(m.controls.Restore, m.actions.RestoreFault)
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "a":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "h", "?":
			m.help = true
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	case statsMsg:
		m.stats = msg.StatsRow
		m.controls = msg.Controls
		m.refreshHeader()
	case adminMsg:
		m.admin = msg.active
	case setActionsMsg:
		m.actions = msg.actions
	}
	return m, nil
}

// trigger runs fn off the update loop when the action is enabled.
func (m tuiModel) trigger(enabled bool, fn func()) tea.Cmd {
	if !enabled || fn == nil {
		return nil
	}
	return func() tea.Msg {
		fn()
		return nil
	}
}

func (m *tuiModel) refreshHeader() {
	m.header = m.renderHeader()
	m.headerHeight = lipgloss.Height(m.header)
	m.updateViewportHeight()
}

func (m *tuiModel) updateViewportHeight() {
	h := m.height - m.headerHeight - lipgloss.Height(m.renderBottom()) - 3
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	lines := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		if m.wrap && m.vp.Width > 0 {
			l = wordwrap.String(l, m.vp.Width)
		}
		lines = append(lines, l)
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	return strings.Join([]string{
		m.header,
		divider,
		m.vp.View(),
		divider,
		m.renderBottom(),
	}, "\n")
}

func (m tuiModel) renderHeader() string {
	state := styleLabel.Render("STOPPED")
	if m.stats.Running {
		state = styleOK.Render("RUNNING")
	}
	loss := styleOK
	if m.stats.LossPercent >= 5 {
		loss = styleBad
	} else if m.stats.LossPercent >= 1 {
		loss = styleWarn
	}
	link := styleOK.Render(topology.StatusUp)
	if m.stats.FaultInjected {
		link = styleBad.Render(topology.StatusDown)
	}
	status := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s  %s %s",
		styleLabel.Render("Simulation"), state,
		styleLabel.Render("Elapsed"), styleValue.Render(fmt.Sprintf("%ds", m.stats.ElapsedSeconds)),
		styleLabel.Render("Sent"), styleValue.Render(fmt.Sprint(m.stats.TotalSent)),
		styleLabel.Render("Received"), styleValue.Render(fmt.Sprint(m.stats.TotalReceived)),
		styleLabel.Render("Loss"), loss.Render(fmt.Sprintf("%.1f%%", m.stats.LossPercent)),
		styleLabel.Render("Link "+m.faultLink), link)
	return lipgloss.JoinVertical(lipgloss.Left, styleTitle.Render("Network Simulation"), status, m.table.View())
}

func (m tuiModel) renderBottom() string {
	key := func(k, label string, enabled bool) string {
		if enabled {
			return styleValue.Render("["+k+"]") + " " + label
		}
		return styleDisabled.Render("[" + k + "] " + label)
	}
	indicator := func(on bool) string {
		if on {
			return styleOK.Render("●")
		}
		return styleBad.Render("●")
	}
	return fmt.Sprintf("%s %s %s %s | Admin UI %s | Wrap %s | Scroll %s | [h] help [q] quit",
		key("s", "start", m.controls.Start),
		key("x", "stop", m.controls.Stop),
		key("f", "inject fault", m.controls.Inject),
		key("r", "restore", m.controls.Restore),
		indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll))
}

func (m tuiModel) renderHelp() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Keys") + "\n")
	for _, kv := range [][2]string{
		{"s", "start the simulation"},
		{"x", "stop the simulation"},
		{"f", "inject a fault on " + m.faultLink},
		{"r", "restore " + m.faultLink},
		{"w", "toggle line wrap"},
		{"a", "toggle autoscroll"},
		{"j/k", "scroll the event log when autoscroll is off"},
		{"h/?", "toggle this help"},
		{"q", "quit"},
	} {
		fmt.Fprintf(&b, "  %-4s %s\n", kv[0], kv[1])
	}
	return strings.TrimRight(b.String(), "\n")
}
