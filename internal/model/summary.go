package model

// RunSummary tallies what happened at each stage of a daily run. The
// orchestrator always produces one, even when individual items or sinks
// failed.
type RunSummary struct {
	Date string `json:"date"`

	Collected      int `json:"collected"`
	Duplicates     int `json:"duplicates"`
	FetchedOK      int `json:"fetched_ok"`
	FetchFailed    int `json:"fetch_failed"`
	AnalyzedOK     int `json:"analyzed_ok"`
	AnalysisFailed int `json:"analysis_failed"`
	Stored         int `json:"stored"`

	HighItems  int `json:"high_items"`
	TrendItems int `json:"trend_items"`

	Published     bool   `json:"published"`
	DiscussionURL string `json:"discussion_url,omitempty"`
	Notified      bool   `json:"notified"`

	Errors []string `json:"errors,omitempty"`
}

// RecordError appends a stage error to the summary, keeping at most the
// first 50 so a pathological feed cannot balloon the report.
func (s *RunSummary) RecordError(msg string) {
	if len(s.Errors) < 50 {
		s.Errors = append(s.Errors, msg)
	}
}
