// Package diag defines the diagnostic model shared by descriptor construction
// and enum classification.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable string ID (codes.go).
//   - Message: short, actionable text.
//   - File and Subject: the feed file and the qualified declaration name the
//     finding is about. Feeds carry no source spans; declarations are the unit
//     of location.
//   - Notes: optional secondary subjects with additional context.
//
// # Emitting diagnostics
//
// Producers report through a Reporter so emission is decoupled from storage.
// ReportError/ReportWarning build a ReportBuilder; chain WithNote and call
// Emit. BagReporter collects into a Bag; SyncReporter makes any Reporter safe
// for concurrent producers; DedupReporter drops repeats.
//
// Package diag performs no formatting or IO; rendering lives in
// internal/diagfmt.
package diag
