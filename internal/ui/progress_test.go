package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lowerc/internal/driver"
)

func TestApplyEventCountsDeclarations(t *testing.T) {
	m := NewProgressModel("unit", nil).(*progressModel)
	m.applyEvent(driver.Event{Stage: driver.StageClassify, Status: driver.StatusWorking})
	if m.stageLabel != "classifying" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	for _, ev := range []driver.Event{
		{Decl: "p.A", Stage: driver.StageClassify, Status: driver.StatusWorking},
		{Decl: "p.B", Stage: driver.StageClassify, Status: driver.StatusWorking},
		{Decl: "p.A", Stage: driver.StageClassify, Status: driver.StatusDone},
		{Decl: "p.A", Stage: driver.StageClassify, Status: driver.StatusDone},
		{Decl: "p.B", Stage: driver.StageClassify, Status: driver.StatusError},
	} {
		m.applyEvent(ev)
	}
	if len(m.items) != 2 || m.finished != 2 || m.failed != 1 {
		t.Fatalf("items=%d finished=%d failed=%d", len(m.items), m.finished, m.failed)
	}
	view := m.View()
	if !strings.Contains(view, "2/2 declarations, 1 failed") || !strings.Contains(view, "p.B") {
		t.Fatalf("view:\n%s", view)
	}
}

func TestChannelSinkDropsAfterDone(t *testing.T) {
	ch := make(chan driver.Event, 1)
	done := make(chan struct{})
	sink := ChannelSink{Ch: ch, Done: done}

	sink.OnEvent(driver.Event{Decl: "p.A"})
	close(done)

	finished := make(chan struct{})
	go func() {
		for range 300 {
			sink.OnEvent(driver.Event{Decl: "p.B"})
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("OnEvent blocked on a full channel after Done")
	}
	if ev := <-ch; ev.Decl != "p.A" {
		t.Fatalf("buffered event = %q", ev.Decl)
	}
}

func TestQuitBeforeDoneIsNotCompleted(t *testing.T) {
	m := NewProgressModel("unit", nil)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || Completed(next) {
		t.Fatalf("ctrl+c: cmd=%v completed=%v", cmd != nil, Completed(next))
	}
	next, _ = next.Update(doneMsg{})
	if !Completed(next) {
		t.Fatalf("model not completed after the event stream closed")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("java.util.concurrent.ConcurrentHashMap", 12); got != "java.util..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 12); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
