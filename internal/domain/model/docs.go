package model

// Kind selects the import flow.
type Kind string

// Supported import kinds.
const (
	KindPlayers Kind = "players"
	KindGuilds  Kind = "guilds"
)

// Valid reports whether k names a supported import kind.
func (k Kind) Valid() bool {
	return k == KindPlayers || k == KindGuilds
}

// Collection returns the entity collection the kind writes into.
func (k Kind) Collection() string {
	return string(k)
}

// ScanDoc is one historical observation for one entity at one instant,
// persisted verbatim and keyed by (entity id, timestamp). Re-importing the
// same key merges over the stored document rather than duplicating it.
type ScanDoc struct {
	EntityID     string            `json:"entityId"`
	Server       string            `json:"server"`
	Timestamp    int64             `json:"timestamp"`
	RawTimestamp string            `json:"rawTimestamp"`
	Values       map[string]string `json:"values"`
	WrittenAt    int64             `json:"writtenAt"`
}

// LatestDoc holds the row with the maximum timestamp ever observed for an
// entity. Exactly one exists per entity; imports recompute it wholesale.
type LatestDoc struct {
	EntityID     string            `json:"entityId"`
	Server       string            `json:"server"`
	Timestamp    int64             `json:"timestamp"`
	RawTimestamp string            `json:"rawTimestamp"`
	Values       map[string]string `json:"values"`
	Members      []MemberStats     `json:"members,omitempty"`
	WrittenAt    int64             `json:"writtenAt"`
}

// AggregateDoc is the reduction of all scans for one entity falling inside
// one week or month, shape-complete over the import's header union.
type AggregateDoc struct {
	EntityID   string            `json:"entityId"`
	Server     string            `json:"server"`
	PeriodKey  string            `json:"periodKey"`
	PeriodFrom int64             `json:"periodFrom"`
	PeriodTo   int64             `json:"periodTo"`
	LastScanAt int64             `json:"lastScanAt"`
	Values     map[string]string `json:"values"`
	WrittenAt  int64             `json:"writtenAt"`
}

// MemberStats carries the per-member stat summary used by progress reports.
type MemberStats struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MainStat   int64  `json:"mainStat"`
	BaseStats  int64  `json:"baseStats"`
	TotalStats int64  `json:"totalStats"`
	Con        int64  `json:"con"`
}

// BaselineDoc is the earliest-known member-list snapshot of a guild within a
// calendar month. Its timestamp only ever moves backward (retroactive imports
// supplying an earlier observation replace it).
type BaselineDoc struct {
	EntityID  string            `json:"entityId"`
	Month     string            `json:"month"`
	Timestamp int64             `json:"timestamp"`
	Values    map[string]string `json:"values"`
	Members   []MemberStats     `json:"members,omitempty"`
	WrittenAt int64             `json:"writtenAt"`
}

// Availability reason codes for progress reports.
const (
	ReasonInsufficientData = "INSUFFICIENT_DATA"
	ReasonSpanTooLarge     = "SPAN_GT_40D"
)

// ProgressStatus gates whether a month's progress report is trustworthy.
type ProgressStatus struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// ProgressEntry is one ranked row of a progress leaderboard.
type ProgressEntry struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
	Value    int64  `json:"value"`
}

// ProgressDoc is the derived month-over-month report for one guild and one
// calendar month, recomputed wholesale from baseline plus latest on request.
// Ranked lists are empty whenever Status.Available is false.
type ProgressDoc struct {
	EntityID string         `json:"entityId"`
	Month    string         `json:"month"`
	Label    string         `json:"label"`
	From     int64          `json:"from"`
	To       int64          `json:"to"`
	DaysSpan int            `json:"daysSpan"`
	Status   ProgressStatus `json:"status"`

	MostBaseGained   []ProgressEntry `json:"mostBaseGained,omitempty"`
	SumBaseStats     []ProgressEntry `json:"sumBaseStats,omitempty"`
	HighestBaseStats []ProgressEntry `json:"highestBaseStats,omitempty"`
	HighestTotal     []ProgressEntry `json:"highestTotal,omitempty"`
	MainAndCon       []ProgressEntry `json:"mainAndCon,omitempty"`
}
