package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/chartpipe/pkg/observability"
)

// chunkMsg reports progressive-execution progress for one series.
type chunkMsg struct {
	series int
	kind   string
	done   int
	total  int
}

// passDoneMsg signals the end of the render pass.
type passDoneMsg struct{}

// teaHooks forwards pipeline events into the bubbletea event loop. Sends are
// non-blocking: a slow terminal must never stall the render pass.
type teaHooks struct {
	observability.NoopPipelineHooks
	events chan tea.Msg
}

func (h *teaHooks) OnChunk(_ context.Context, seriesIndex int, kind string, done, total int) {
	select {
	case h.events <- chunkMsg{series: seriesIndex, kind: kind, done: done, total: total}:
	default:
	}
}

func (h *teaHooks) OnPassComplete(_ context.Context, _ string, _ time.Duration, _ int) {
	select {
	case h.events <- passDoneMsg{}:
	default:
	}
}

// progressModel is the bubbletea model showing per-series chunk progress
// during a progressive render.
type progressModel struct {
	events chan tea.Msg
	rows   map[int]chunkMsg
	err    error
	done   bool
}

func newProgressModel(events chan tea.Msg) progressModel {
	return progressModel{events: events, rows: make(map[int]chunkMsg)}
}

// waitForEvent blocks on the hook channel and feeds the next event into
// Update.
func (m progressModel) waitForEvent() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m progressModel) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
	case chunkMsg:
		m.rows[msg.series] = msg
		return m, m.waitForEvent()
	case passDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Rendering"))
	b.WriteString("\n\n")

	indices := make([]int, 0, len(m.rows))
	for i := range m.rows {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, i := range indices {
		row := m.rows[i]
		b.WriteString(fmt.Sprintf("  series %d  %s %s %s\n",
			i,
			renderBar(row.done, row.total),
			StyleDim.Render(fmt.Sprintf("%d/%d", row.done, row.total)),
			StyleDim.Render(row.kind)))
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("  ctrl+c to cancel"))
	return b.String()
}

// renderBar draws a fixed-width progress bar.
func renderBar(done, total int) string {
	const width = 24
	if total <= 0 {
		total = 1
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	return styleBar.Render(strings.Repeat("█", filled)) + StyleDim.Render(strings.Repeat("░", width-filled))
}

// withChunkProgress runs fn while displaying a live chunk-progress TUI. The
// pipeline hooks are swapped in for the duration of the call and restored
// afterwards.
func withChunkProgress(fn func() error) error {
	events := make(chan tea.Msg, 64)
	hooks := &teaHooks{events: events}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	p := tea.NewProgram(newProgressModel(events))

	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
		select {
		case events <- passDoneMsg{}:
		default:
		}
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	return <-errCh
}
