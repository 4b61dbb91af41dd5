// Package driver runs one compilation unit through the descriptor pipeline:
// load and validate the feed, intern types, intern methods in parallel,
// classify enums in parallel, and collect diagnostics.
package driver

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"lowerc/internal/build"
	"lowerc/internal/diag"
	"lowerc/internal/enums"
	"lowerc/internal/feed"
	"lowerc/internal/observ"
	"lowerc/internal/trace"
	"lowerc/internal/types"
)

// Unit names a compilation unit and the feed files that make it up.
type Unit struct {
	Name  string
	Files []string
}

// Options tune Run.
type Options struct {
	// Jobs bounds the parallel passes; GOMAXPROCS when zero.
	Jobs           int
	MaxDiagnostics int
	// Cache, when set, short-circuits classification of unchanged enums.
	Cache    *DiskCache
	Progress ProgressSink
	// Interner is reset and reused when set.
	Interner *types.Interner
	Timer    *observ.Timer
}

// MethodResult pairs a method record with its descriptor.
type MethodResult struct {
	Decl feed.MethodDecl
	ID   types.MethodID
	OK   bool
}

// EnumResult is the classification of one enum declaration.
type EnumResult struct {
	Name   string
	Type   types.TypeID
	Info   types.EnumInfo
	OK     bool
	Cached bool
}

// Result is everything one run produced.
type Result struct {
	Unit     string
	Interner *types.Interner
	Builder  *build.Builder
	Registry *enums.Registry
	Bag      *diag.Bag
	Methods  []MethodResult
	Enums    []EnumResult
	// Excluded lists the enums classification rejected, by name.
	Excluded []*enums.Error
}

// Run loads unit's feed files and runs RunFeed on them.
func Run(ctx context.Context, unit Unit, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "load", trace.SpanFromContext(ctx))
	stop := opts.Timer.Start("load")
	emit(opts.Progress, Event{Stage: StageLoad, Status: StatusWorking})

	bag := diag.NewBag(opts.MaxDiagnostics)
	r := &diag.BagReporter{Bag: bag}
	u, loaded := feed.LoadFiles(unit.Files, r)
	valid := feed.Validate(u, r)
	if unit.Name != "" {
		u.Name = unit.Name
	}
	stop(len(unit.Files))
	span.End("")

	if !loaded || !valid {
		emit(opts.Progress, Event{Stage: StageLoad, Status: StatusError})
		bag.Sort()
		return &Result{Unit: u.Name, Bag: bag}, nil
	}
	emit(opts.Progress, Event{Stage: StageLoad, Status: StatusDone})
	return runFeed(ctx, u, opts, bag)
}

// RunFeed runs the pipeline on records already in memory. Records are
// validated first; an invalid unit yields a Result with only diagnostics.
// The returned error is a fatal malformed descriptor key; the Result is
// still returned so its diagnostics can be shown.
func RunFeed(ctx context.Context, u *feed.Unit, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	bag := diag.NewBag(opts.MaxDiagnostics)
	if !feed.Validate(u, &diag.BagReporter{Bag: bag}) {
		bag.Sort()
		return &Result{Unit: u.Name, Bag: bag}, nil
	}
	return runFeed(ctx, u, opts, bag)
}

func (o Options) withDefaults() Options {
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = 1000
	}
	if o.Timer == nil {
		o.Timer = observ.NewTimer()
	}
	return o
}

func runFeed(ctx context.Context, u *feed.Unit, opts Options, bag *diag.Bag) (*Result, error) {
	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "unit:"+u.Name, trace.SpanFromContext(ctx))
	defer root.End("")
	ctx = trace.WithSpan(ctx, root)

	in := opts.Interner
	if in == nil {
		in = types.NewInterner()
	} else {
		in.Reset()
	}
	sink := diag.NewSyncReporter(&diag.BagReporter{Bag: bag})
	res := &Result{
		Unit:     u.Name,
		Interner: in,
		Builder:  build.New(in, sink),
		Registry: enums.NewRegistry(in),
		Bag:      bag,
	}
	defer bag.Sort()

	if err := pass(ctx, opts, StageTypes, len(u.Types), func(ctx context.Context) error {
		return res.Builder.Types(ctx, u)
	}); err != nil {
		return res, err
	}
	if err := pass(ctx, opts, StageMethods, len(u.Methods), func(ctx context.Context) error {
		return buildMethods(ctx, res, u.Methods, opts)
	}); err != nil {
		return res, err
	}
	names := res.Builder.Enums()
	if err := pass(ctx, opts, StageClassify, len(names), func(ctx context.Context) error {
		return classifyEnums(ctx, res, names, sink, opts)
	}); err != nil {
		return res, err
	}
	res.Excluded = res.Registry.Excluded()
	return res, nil
}

// pass wraps one stage in a trace span, a timer phase and progress events.
func pass(ctx context.Context, opts Options, stage Stage, count int, fn func(context.Context) error) error {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, string(stage), trace.SpanFromContext(ctx))
	stop := opts.Timer.Start(string(stage))
	start := time.Now()
	emit(opts.Progress, Event{Stage: stage, Status: StatusWorking})

	err := fn(trace.WithSpan(ctx, span))

	stop(count)
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	span.End(string(status))
	emit(opts.Progress, Event{Stage: stage, Status: status, Err: err, Elapsed: time.Since(start)})
	return err
}

func buildMethods(ctx context.Context, res *Result, decls []feed.MethodDecl, opts Options) error {
	res.Methods = make([]MethodResult, len(decls))
	if len(decls) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, len(decls)))
	for i, md := range decls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			emit(opts.Progress, Event{Decl: md.Subject(), Stage: StageMethods, Status: StatusWorking})
			id, ok, err := res.Builder.Method(gctx, md)
			res.Methods[i] = MethodResult{Decl: md, ID: id, OK: ok}
			emit(opts.Progress, Event{Decl: md.Subject(), Stage: StageMethods, Status: declStatus(ok, err), Err: err, Elapsed: time.Since(start)})
			return err
		})
	}
	return g.Wait()
}

func classifyEnums(ctx context.Context, res *Result, names []string, r diag.Reporter, opts Options) error {
	res.Enums = make([]EnumResult, len(names))
	if len(names) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, len(names)))
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			emit(opts.Progress, Event{Decl: name, Stage: StageClassify, Status: StatusWorking})
			er, err := classifyOne(gctx, res, name, r, opts.Cache)
			res.Enums[i] = er
			status := declStatus(er.OK, err)
			if er.Cached && err == nil {
				status = StatusCached
			}
			emit(opts.Progress, Event{Decl: name, Stage: StageClassify, Status: status, Err: err, Elapsed: time.Since(start)})
			return err
		})
	}
	return g.Wait()
}

func classifyOne(ctx context.Context, res *Result, name string, r diag.Reporter, cache *DiskCache) (EnumResult, error) {
	er := EnumResult{Name: name}
	d, ok, err := res.Builder.Enum(name)
	if err != nil || !ok {
		return er, err
	}
	er.Type = d.Type
	if cache == nil {
		er.Info, er.OK, err = res.Registry.Register(ctx, d, r)
		return er, err
	}

	key, err := enumDigest(res.Interner, d)
	if err != nil {
		return er, err
	}
	var p DiskPayload
	if hit, _ := cache.Get(key, &p); hit {
		if out, valid := p.outcome(); valid {
			er.Info, er.OK, err = res.Registry.Apply(ctx, d, out, r)
			er.Cached = true
			return er, err
		}
	}

	out := res.Registry.Classify(d)
	er.Info, er.OK, err = res.Registry.Apply(ctx, d, out, r)
	if err == nil {
		if putErr := cache.Put(key, payloadOf(name, out)); putErr != nil {
			diag.ReportWarning(r, diag.EnumInfo, name, "classification cache: "+putErr.Error()).Emit()
		}
	}
	return er, err
}

func declStatus(ok bool, err error) Status {
	switch {
	case err != nil:
		return StatusError
	case !ok:
		return StatusSkipped
	default:
		return StatusDone
	}
}
