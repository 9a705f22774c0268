package model

// IngestVersion tags every stored record with the schema revision that
// produced it.
const IngestVersion = "1.0.0"

// Enrichment is the validated output of one analysis call.
type Enrichment struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"key_points"`
	Themes      []string `json:"themes"`
	Tags        []string `json:"tags"`
	Language    string   `json:"language"`
	PublishedAt *string  `json:"published_at"`
	ScoreDelta  int      `json:"reliability_score_delta"`
	ScoreReason string   `json:"reliability_reason"`
}

// Record is one durably stored, enriched article. Immutable once
// appended; exactly one per fingerprint for the store's lifetime.
type Record struct {
	ItemID        string `json:"item_id"`
	URL           string `json:"url"`
	URLNormalized string `json:"url_normalized"`

	SourceGroup SourceGroup `json:"source_group"`
	SourceKey   string      `json:"source_key"`
	SourceName  string      `json:"source_name"`
	SourceType  SourceType  `json:"source_type"`
	Publisher   string      `json:"publisher"`

	FeedTitle   string `json:"rss_title"`
	FeedPubDate string `json:"rss_pub_date,omitempty"`

	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"key_points"`
	Themes      []string `json:"themes"`
	Tags        []string `json:"tags"`
	Language    string   `json:"language"`
	PublishedAt *string  `json:"published_at"`

	ReliabilityScore  int    `json:"reliability_score"`
	ReliabilityBase   int    `json:"reliability_base"`
	ReliabilityDelta  int    `json:"reliability_delta"`
	ReliabilityReason string `json:"reliability_reason"`

	ContentLength int    `json:"content_length"`
	ObservedAt    string `json:"observed_at"`
	RetrievedAt   string `json:"retrieved_at"`
	IngestVersion string `json:"ingest_version"`
}
