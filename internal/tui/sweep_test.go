package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/gravkern/internal/bench"
	"github.com/san-kum/gravkern/internal/launch"
	"github.com/san-kum/gravkern/internal/validate"
)

func testOptions() bench.Options {
	return bench.Options{Particles: 64, Columns: 2, Strategy: launch.ColumnSplit, Precision: "single"}
}

func TestModelCollectsPoints(t *testing.T) {
	m := newModel(testOptions(), []int{8, 12, 16}, nil)

	next, _ := m.Update(pointMsg{TileSize: 8, Result: &bench.Result{
		Speedup: 2, Validated: true,
		Kernel: bench.Stats{Samples: 1, Mean: time.Millisecond},
		Report: validate.Report{Pass: true},
	}})
	next, _ = next.Update(pointMsg{TileSize: 12, Err: errors.New("launch: rejected")})
	m = next.(model)

	if len(m.points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(m.points))
	}
	if got := m.progress(); got < 0.66 || got > 0.67 {
		t.Errorf("progress = %v, want 2/3", got)
	}

	view := m.View()
	for _, want := range []string{"p=8", "PASS", "launch: rejected", "2/3"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelDoneQuits(t *testing.T) {
	m := newModel(testOptions(), []int{8}, nil)
	next, cmd := m.Update(doneMsg{points: []bench.Point{{TileSize: 8, Err: errors.New("x")}}})
	if cmd == nil {
		t.Fatal("done should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("done should quit the program")
	}
	if !next.(model).done {
		t.Error("model not marked done")
	}
	if _, cmd := next.Update(tickMsg(time.Now())); cmd != nil {
		t.Error("ticks should stop after completion")
	}
}

func TestModelAbortCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := newModel(testOptions(), []int{8}, cancel)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if ctx.Err() == nil {
		t.Error("abort should cancel the sweep context")
	}
}
