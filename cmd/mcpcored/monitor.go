package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/forgemcp/mcpcore"
	"github.com/forgemcp/mcpcore/internal/events"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch live session and event-bus activity",
	Long: `Boots a server with the demo tool, prompt, and resource and opens a
terminal dashboard over its event bus and session table.

monitor drives its own synthetic traffic (a simulated client calling the
demo tool on a timer) rather than attaching to a real stdio connection,
since a stdio MCP session and an interactive terminal UI both want
exclusive control of the terminal. Use 'mcpcored serve' for the real
protocol loop; use monitor to see what its event bus looks like in motion.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	srv := mcpcore.New(mcpcore.WithServerInfo("mcpcored-monitor", version))
	if err := registerDemoComponents(srv); err != nil {
		return fmt.Errorf("failed to register demo components: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := newMonitorModel(srv)
	p := tea.NewProgram(model, tea.WithAltScreen())

	go driveSyntheticTraffic(ctx, srv)

	_, err := p.Run()
	cancel()
	return err
}

// driveSyntheticTraffic opens an in-process session against srv and calls
// its demo tool on a timer, so the monitor dashboard has something to show.
func driveSyntheticTraffic(ctx context.Context, srv *mcpcore.Server) {
	conn := srv.ServeInProcess("monitor-demo")
	_, _ = conn.Deliver(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"monitor","version":"0"}}}`))
	_, _ = conn.Deliver(ctx, []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()
	n := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n++
			req := fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":"echo","arguments":{"text":"tick %d"}}}`, n+1, n)
			_, _ = conn.Deliver(ctx, []byte(req))
		}
	}
}

const maxLogLines = 200

type monitorModel struct {
	srv      *mcpcore.Server
	eventCh  chan events.Event
	lines    []string
	sessions int
	width    int
	height   int

	titleStyle lipgloss.Style
	lineStyle  lipgloss.Style
	dimStyle   lipgloss.Style
}

func newMonitorModel(srv *mcpcore.Server) monitorModel {
	orange := lipgloss.AdaptiveColor{Light: "#EA580C", Dark: "#FB923C"}
	return monitorModel{
		srv:        srv,
		eventCh:    make(chan events.Event, 100),
		titleStyle: lipgloss.NewStyle().Bold(true).Foreground(orange),
		lineStyle:  lipgloss.NewStyle(),
		dimStyle:   lipgloss.NewStyle().Faint(true),
	}
}

func (m monitorModel) Init() tea.Cmd {
	eventCh := m.eventCh
	m.srv.Events().Subscribe(func(e events.Event) {
		select {
		case eventCh <- e:
		default:
		}
	})
	return m.waitForEvent()
}

func (m monitorModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.eventCh
	}
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case events.Event:
		m.lines = append(m.lines, formatEvent(msg))
		if len(m.lines) > maxLogLines {
			m.lines = m.lines[len(m.lines)-maxLogLines:]
		}
		m.sessions = len(m.srv.Sessions())
		return m, m.waitForEvent()
	}
	return m, nil
}

func (m monitorModel) View() string {
	var b strings.Builder
	b.WriteString(m.titleStyle.Render("mcpcored monitor"))
	b.WriteString("\n")
	b.WriteString(m.dimStyle.Render(fmt.Sprintf("sessions: %d    press q to quit", m.sessions)))
	b.WriteString("\n\n")

	visible := m.lines
	if max := m.height - 5; max > 0 && len(visible) > max {
		visible = visible[len(visible)-max:]
	}
	for _, line := range visible {
		b.WriteString(m.lineStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func formatEvent(e events.Event) string {
	ts := e.Timestamp().Format("15:04:05.000")
	switch evt := e.(type) {
	case events.SessionCreatedEvent:
		return fmt.Sprintf("%s  %-10s session=%s", ts, evt.Type(), evt.SessionID())
	case events.SessionDestroyedEvent:
		return fmt.Sprintf("%s  %-10s session=%s reason=%s", ts, evt.Type(), evt.SessionID(), evt.Reason)
	case events.LogMessageEvent:
		return fmt.Sprintf("%s  %-10s [%s] %s", ts, evt.Type(), evt.Level, evt.Message)
	case events.ListChangedEvent:
		return fmt.Sprintf("%s  %-10s kind=%s session=%s", ts, evt.Type(), evt.Kind, evt.SessionID())
	case events.ResourceUpdatedEvent:
		return fmt.Sprintf("%s  %-10s uri=%s", ts, evt.Type(), evt.URI)
	case events.OutboundTimeoutEvent:
		return fmt.Sprintf("%s  %-10s method=%s id=%s", ts, evt.Type(), evt.Method, evt.RequestID)
	case events.OutboundResolvedEvent:
		return fmt.Sprintf("%s  %-10s method=%s id=%s isError=%v", ts, evt.Type(), evt.Method, evt.RequestID, evt.IsError)
	case events.ConfigReloadedEvent:
		return fmt.Sprintf("%s  %-10s", ts, evt.Type())
	case events.ErrorEvent:
		return fmt.Sprintf("%s  %-10s kind=%s msg=%s err=%v", ts, evt.Type(), evt.Kind, evt.Message, evt.Err)
	default:
		return fmt.Sprintf("%s  %-10s", ts, e.Type())
	}
}
