// Package progress defines the progress-reporting contract used by the
// collector and providers to surface long-running work to a caller, without
// coupling them to any particular terminal or logging backend.
package progress

// Reporter receives phase and progress updates from the collector and its
// providers. Implementations must be safe for concurrent use: multiple
// providers report through the same Reporter from different goroutines.
type Reporter interface {
	// SetPhase labels the operation now in progress (e.g. "Identifying",
	// "Collecting").
	SetPhase(phase string)

	// SetDeterminate switches to a bounded progress display driven by a
	// callback returning (total, current, message). The callback is polled
	// periodically by the reporter, not invoked synchronously.
	SetDeterminate(callback func() (total, current uint64, message string))

	// SetIndeterminate switches to an unbounded progress display driven by a
	// callback returning a status message, polled periodically.
	SetIndeterminate(callback func() string)

	// Println writes a line without corrupting an active progress display.
	Println(msg string)

	// Done finishes and clears the progress indicator.
	Done()
}

// NoOp is a Reporter that discards every update. Useful for tests and
// non-interactive invocations (e.g. piped output).
type NoOp struct{}

func (NoOp) SetPhase(string)                                 {}
func (NoOp) SetDeterminate(func() (uint64, uint64, string))  {}
func (NoOp) SetIndeterminate(func() string)                  {}
func (NoOp) Println(string)                                  {}
func (NoOp) Done()                                            {}

var _ Reporter = NoOp{}
