package lowering

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lowerc/internal/types"
)

func TestGateNonTriggeringAccesses(t *testing.T) {
	g := NewGate("pkg.EnumWithClinit", func(context.Context) error { return nil })
	ctx := context.Background()
	for _, op := range []Operation{OpConstantRead, OpInstanceOf, OpCast, OpOrdinal, OpValueRead} {
		if err := g.Access(ctx, types.BoxedOrdinal, op); err != nil {
			t.Fatalf("%s: %v", op, err)
		}
		if g.State() != Uninitialized {
			t.Fatalf("%s moved the gate to %s", op, g.State())
		}
	}
	for i := 0; i < 3; i++ {
		if err := g.Access(ctx, types.BoxedOrdinal, OpDevirtualizedCall); err != nil {
			t.Fatalf("devirtualized: %v", err)
		}
	}
	if g.State() != Initialized || g.Runs() != 1 {
		t.Fatalf("state=%s runs=%d", g.State(), g.Runs())
	}
}

func TestGateReentrant(t *testing.T) {
	var g *Gate
	nested := 0
	g = NewGate("pkg.Self", func(ctx context.Context) error {
		if g.State() != Initializing {
			t.Errorf("initializer runs in state %s", g.State())
		}
		nested++
		return g.Ensure(ctx)
	})
	if err := g.Ensure(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if nested != 1 || g.Runs() != 1 {
		t.Fatalf("initializer ran %d times", nested)
	}
}

func TestGateConcurrent(t *testing.T) {
	release := make(chan struct{})
	g := NewGate("pkg.Slow", func(context.Context) error {
		<-release
		return nil
	})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Ensure(context.Background()); err != nil {
				t.Errorf("ensure: %v", err)
			}
			if g.State() != Initialized {
				t.Errorf("returned before initialization finished")
			}
		}()
	}
	close(release)
	wg.Wait()
	if g.Runs() != 1 {
		t.Fatalf("runs = %d", g.Runs())
	}
}

func TestGateErrorIsSticky(t *testing.T) {
	boom := errors.New("boom")
	g := NewGate("pkg.Broken", func(context.Context) error { return boom })
	for i := 0; i < 2; i++ {
		if err := g.Ensure(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("attempt %d: got %v", i, err)
		}
	}
	if g.Runs() != 1 {
		t.Fatalf("runs = %d", g.Runs())
	}
}

func TestGatePanicIsSticky(t *testing.T) {
	g := NewGate("pkg.Panics", func(context.Context) error { panic("boom") })
	err := g.Ensure(context.Background())
	var pe *InitPanicError
	if !errors.As(err, &pe) || pe.Value != "boom" || pe.Gate != "pkg.Panics" {
		t.Fatalf("first Ensure: got %v", err)
	}
	if g.State() != Initialized {
		t.Fatalf("state after panic = %s", g.State())
	}

	done := make(chan error, 1)
	go func() { done <- g.Ensure(context.Background()) }()
	select {
	case err := <-done:
		if !errors.As(err, &pe) {
			t.Fatalf("second Ensure: got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("second Ensure blocked; state=%s", g.State())
	}
	if g.Runs() != 1 {
		t.Fatalf("runs = %d", g.Runs())
	}
}

func TestGatePanicReleasesWaiters(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	g := NewGate("pkg.SlowPanic", func(context.Context) error {
		close(started)
		<-release
		panic("late")
	})

	first := make(chan error, 1)
	go func() { first <- g.Ensure(context.Background()) }()
	<-started

	waiter := make(chan error, 1)
	go func() { waiter <- g.Ensure(context.Background()) }()
	close(release)

	for _, ch := range []chan error{first, waiter} {
		select {
		case err := <-ch:
			var pe *InitPanicError
			if !errors.As(err, &pe) {
				t.Fatalf("got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("caller blocked after initializer panic")
		}
	}
}

func TestGatesPerType(t *testing.T) {
	gs := NewGates()
	a := gs.For(types.TypeID(10), "a", nil)
	if gs.For(types.TypeID(10), "a", nil) != a {
		t.Fatalf("gate not reused")
	}
	if _, ok := gs.Lookup(types.TypeID(11)); ok {
		t.Fatalf("unexpected gate")
	}
}
