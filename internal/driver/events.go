package driver

import "time"

// Stage is a pass of Run.
type Stage string

const (
	StageLoad     Stage = "load"
	StageTypes    Stage = "types"
	StageMethods  Stage = "methods"
	StageClassify Stage = "classify"
)

// Status is the progress state of one declaration within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusCached  Status = "cached"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Event reports progress for one declaration, or for the whole stage when
// Decl is empty.
type Event struct {
	Decl    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from
// several goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) { f(ev) }

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
