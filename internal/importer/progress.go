package importer

// Phase tags a stage of one flush pass.
type Phase string

// Flush phases.
const (
	PhasePrepare Phase = "prepare"
	PhaseWrite   Phase = "write"
	PhaseDone    Phase = "done"
)

// Pass names the record class a progress update belongs to.
type Pass string

// Flush passes, executed in this order.
const (
	PassScans   Pass = "scans"
	PassLatest  Pass = "latest"
	PassHistory Pass = "history"
)

// Update is one progress notification. Current is monotonically
// non-decreasing within a pass; Total is fixed for the pass.
type Update struct {
	Phase   Phase
	Current int
	Total   int
	Pass    Pass
}

// Callback receives progress updates. Callbacks are fire-and-forget: a slow
// or panicking callback never aborts the import.
type Callback func(Update)

// safeEmit delivers an update, swallowing callback panics.
func safeEmit(cb Callback, u Update) {
	if cb == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	cb(u)
}
