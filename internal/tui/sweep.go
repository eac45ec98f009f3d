// Package tui shows a tile-size sweep live while it runs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/gravkern/internal/bench"
	"github.com/san-kum/gravkern/internal/viz"
)

type tickMsg time.Time

type pointMsg bench.Point

type doneMsg struct {
	points []bench.Point
	err    error
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	opts   bench.Options
	tiles  []int
	points []bench.Point
	frame  int
	start  time.Time
	done   bool
	err    error
	cancel context.CancelFunc
	width  int
}

func newModel(opts bench.Options, tiles []int, cancel context.CancelFunc) model {
	return model{
		opts:   opts,
		tiles:  tiles,
		points: make([]bench.Point, 0, len(tiles)),
		start:  time.Now(),
		cancel: cancel,
		width:  80,
	}
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, tick()
	case pointMsg:
		m.points = append(m.points, bench.Point(msg))
	case doneMsg:
		m.done = true
		m.err = msg.err
		if msg.points != nil {
			m.points = msg.points
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m model) progress() float64 {
	if len(m.tiles) == 0 {
		return 1
	}
	return float64(len(m.points)) / float64(len(m.tiles))
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(viz.Title.Render("gravkern sweep"))
	b.WriteString("\n")
	b.WriteString(viz.Subtle.Render(fmt.Sprintf("n=%d q=%d %s %s precision",
		m.opts.Particles, m.opts.Columns, m.opts.Strategy, m.opts.Precision)))
	b.WriteString("\n\n")

	spin := viz.AnimatedSpinner(m.frame)
	if m.done {
		spin = " "
	}
	fmt.Fprintf(&b, "%s %s %d/%d  %s\n\n", spin, viz.ProgressBar(m.progress(), 30),
		len(m.points), len(m.tiles), time.Since(m.start).Round(100*time.Millisecond))

	speedups := make([]float64, 0, len(m.points))
	for _, p := range m.points {
		label := viz.MetricLabel.Render(fmt.Sprintf("p=%-5d", p.TileSize))
		if p.Err != nil {
			fmt.Fprintf(&b, "%s %s\n", label, viz.StatusSkip.Render(p.Err.Error()))
			continue
		}
		r := p.Result
		speedups = append(speedups, r.Speedup)
		check := viz.StatusSkip.Render("SKIP")
		if r.Validated {
			check = viz.Status(r.Report.Pass)
		}
		fmt.Fprintf(&b, "%s %s %s %s\n", label,
			viz.MetricValue.Render(fmt.Sprintf("%10v", r.Kernel.Mean)),
			viz.MetricValue.Render(fmt.Sprintf("%6.2fx", r.Speedup)),
			check)
	}

	if len(speedups) > 1 {
		b.WriteString("\n")
		b.WriteString(viz.MetricLabel.Render("speedup "))
		b.WriteString(viz.SparklineChart(speedups, len(speedups)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(viz.StatusFail.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(viz.KeyHint.Render("q: abort"))
	b.WriteString("\n")
	return b.String()
}

// RunSweep runs bench.Sweep in the background and renders its progress
// until it completes or the user aborts.
func RunSweep(ctx context.Context, opts bench.Options, tiles []int) ([]bench.Point, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(opts, tiles, cancel))

	var points []bench.Point
	var sweepErr error
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		points, sweepErr = bench.Sweep(ctx, opts, tiles, func(pt bench.Point) {
			p.Send(pointMsg(pt))
		})
		p.Send(doneMsg{points: points, err: sweepErr})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-finished
		return points, err
	}
	cancel()
	<-finished
	return points, sweepErr
}
