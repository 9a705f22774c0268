package model

// SourceGroup partitions sources by editorial trust.
type SourceGroup string

const (
	// GroupHigh covers ministries, research bodies, and major media.
	GroupHigh SourceGroup = "high"
	// GroupTrend covers community and trend media.
	GroupTrend SourceGroup = "trend"
)

// SourceType classifies a publisher for base reliability scoring.
type SourceType string

const (
	TypeMinistry   SourceType = "ministry"
	TypeIntlOrg    SourceType = "intl_org"
	TypeConsulting SourceType = "consulting"
	TypePaper      SourceType = "paper"
	TypeNews       SourceType = "news"
	TypeTech       SourceType = "tech"
	TypeBlog       SourceType = "blog"
	TypeOther      SourceType = "other"
)

// Source is one configured feed.
type Source struct {
	Key        string     `yaml:"key"`
	Name       string     `yaml:"name"`
	URL        string     `yaml:"url"`
	SourceType SourceType `yaml:"source_type"`
	Publisher  string     `yaml:"publisher"`
	Language   string     `yaml:"language"`
}
