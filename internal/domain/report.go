package domain

// UpsertReport counts the outcome of one ingestion batch.
// Added excludes duplicates; Skipped counts articles dropped because their
// text could not be embedded (never fatal to the batch).
type UpsertReport struct {
	Added      int
	Duplicates int
	Skipped    int
}

// Add merges another report into this one.
func (r *UpsertReport) Add(other UpsertReport) {
	r.Added += other.Added
	r.Duplicates += other.Duplicates
	r.Skipped += other.Skipped
}

// RunReport is the manifest of a pipeline run. A run always completes with a
// (possibly partially empty) result plus this manifest; partial data quality
// issues are counted here, never raised.
type RunReport struct {
	Fetched            int
	Ingest             UpsertReport
	Retrieved          int
	RetrieveFailures   int // preferences whose query failed; their sections stay empty
	InvalidPreferences int
	Ranked             int
	SummaryFallbacks   int
	Delivered          bool
}
