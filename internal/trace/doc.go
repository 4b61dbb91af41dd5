// Package trace records what the lowering pipeline is doing: feed loading,
// descriptor interning, enum classification and bridge checks.
//
// Enable tracing from the command line:
//
//	lowerc check --trace=- --trace-level=phase
//
// Tracers:
//
//   - Nop: disabled tracing, zero overhead
//   - StreamTracer: writes every event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events for dumping after a failure
//   - MultiTracer: fans out to several tracers
//
// Levels map onto scopes. LevelPhase records driver and pass spans,
// LevelDetail adds one span per declaration, LevelDebug records point
// events from inside the interner and classifier.
//
// The tracer travels through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "classify", 0)
//	defer span.End("")
package trace
