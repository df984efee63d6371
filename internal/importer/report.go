package importer

// Counts enumerates what an import wrote and what it skipped. Skips are
// per-reason; a row appears under exactly one reason.
type Counts struct {
	WrittenScans   int `json:"writtenScans"`
	WrittenLatest  int `json:"writtenLatest"`
	WrittenWeekly  int `json:"writtenWeekly"`
	WrittenMonthly int `json:"writtenMonthly"`

	// WrittenRosters counts the guild latest documents patched with member
	// lists during a player import. They flush in the latest pass but are
	// not entity latest records, so they are counted apart.
	WrittenRosters int `json:"writtenRosters"`

	SkippedMissingIdentifier int `json:"skippedMissingIdentifier"`
	SkippedInvalidTimestamp  int `json:"skippedInvalidTimestamp"`
	SkippedMissingServer     int `json:"skippedMissingServer"`
}

// Report is returned synchronously when an import completes. It always
// enumerates every skipped row and its reason; only storage failures abort
// the run instead of appearing here.
type Report struct {
	RunID        string   `json:"runId"`
	DetectedType string   `json:"detectedType"`
	Counts       Counts   `json:"counts"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings"`
	DurationMs   int64    `json:"durationMs"`
}
