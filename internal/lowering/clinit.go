package lowering

import (
	"context"
	"fmt"
	"sync"

	"lowerc/internal/trace"
	"lowerc/internal/types"
)

// InitState is the static initialisation state of one enum type.
type InitState uint8

const (
	Uninitialized InitState = iota
	Initializing
	Initialized
)

func (s InitState) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Initializing:
		return "Initializing"
	case Initialized:
		return "Initialized"
	default:
		return fmt.Sprintf("InitState(%d)", s)
	}
}

// Initializer is the static initializer body. It receives a context that
// marks the gate as in progress, so nested triggers return immediately.
type Initializer func(ctx context.Context) error

// Gate runs an enum's static initializer exactly once, on the first
// devirtualized access. Callers on other goroutines block until the run
// completes; re-entrant calls from inside the initializer do not.
type Gate struct {
	name string
	init Initializer

	mu    sync.Mutex
	state InitState
	done  chan struct{}
	err   error
	runs  int
}

func NewGate(name string, init Initializer) *Gate {
	return &Gate{name: name, init: init, done: make(chan struct{})}
}

func (g *Gate) Name() string { return g.name }

func (g *Gate) State() InitState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Runs is how many times the initializer body started.
func (g *Gate) Runs() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.runs
}

type inProgressKey struct{ g *Gate }

// Ensure drives the gate to Initialized. The initializer error, if any, is
// returned to every caller; the gate never re-runs.
func (g *Gate) Ensure(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	g.mu.Lock()
	switch g.state {
	case Initialized:
		err := g.err
		g.mu.Unlock()
		return err
	case Initializing:
		g.mu.Unlock()
		if ctx.Value(inProgressKey{g}) != nil {
			return nil
		}
		select {
		case <-g.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		g.mu.Lock()
		err := g.err
		g.mu.Unlock()
		return err
	}
	g.state = Initializing
	g.runs++
	g.mu.Unlock()

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDebug, "clinit:"+g.name, trace.SpanFromContext(ctx))
	err := g.run(ctx)
	span.End(Initialized.String())

	g.mu.Lock()
	g.state = Initialized
	g.err = err
	g.mu.Unlock()
	close(g.done)
	return err
}

// run calls the initializer body. A panic becomes the gate's sticky
// error so waiters are released.
func (g *Gate) run(ctx context.Context) (err error) {
	if g.init == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &InitPanicError{Gate: g.name, Value: r}
		}
	}()
	return g.init(context.WithValue(ctx, inProgressKey{g}, true))
}

// InitPanicError records a static initializer that panicked.
type InitPanicError struct {
	Gate  string
	Value any
}

func (e *InitPanicError) Error() string {
	return fmt.Sprintf("static initializer of %s panicked: %v", e.Gate, e.Value)
}

// Access performs the initialisation check op requires on variant: only
// devirtualized accesses touch the gate.
func (g *Gate) Access(ctx context.Context, v types.EnumVariant, op Operation) error {
	if !Lookup(v, op).Clinit {
		return nil
	}
	return g.Ensure(ctx)
}

// Gates holds one Gate per enum type.
type Gates struct {
	mu    sync.Mutex
	gates map[types.TypeID]*Gate
}

func NewGates() *Gates {
	return &Gates{gates: make(map[types.TypeID]*Gate)}
}

// For returns the gate for id, creating it with init on first use.
func (gs *Gates) For(id types.TypeID, name string, init Initializer) *Gate {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if g, ok := gs.gates[id]; ok {
		return g
	}
	g := NewGate(name, init)
	gs.gates[id] = g
	return g
}

// Lookup returns the gate for id without creating it.
func (gs *Gates) Lookup(id types.TypeID) (*Gate, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	g, ok := gs.gates[id]
	return g, ok
}
