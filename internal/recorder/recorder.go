package recorder

import "time"

// Fetch outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomePartial  = "partial"
)

// FetchEvent describes one call to the market-data source. Callers only see a
// uniform not-found result; the reason is kept here.
type FetchEvent struct {
	Timestamp time.Time
	Operation string // "fetch", "financials", "quote", "index", "news"
	Symbol    string
	Period    string
	Outcome   string
	Reason    string
	Points    int
	Duration  time.Duration
}

// Recorder persists the fetch audit trail.
type Recorder interface {
	RecordFetch(evt *FetchEvent) error
	RecentFetches(limit int) ([]FetchEvent, error)
	Close() error
}
