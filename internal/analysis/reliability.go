package analysis

import "github.com/eic-hr/eic/internal/model"

// MaxScoreDelta bounds the model's reliability adjustment to [-10, +10].
const MaxScoreDelta = 10

// baseScores is the fixed reliability lookup by source classification.
// Reviewers rely on the ordering: official bodies above research, above
// press, above community media.
var baseScores = map[model.SourceType]int{
	model.TypeMinistry:   80,
	model.TypeIntlOrg:    80,
	model.TypeConsulting: 70,
	model.TypePaper:      70,
	model.TypeNews:       60,
	model.TypeTech:       50,
	model.TypeBlog:       50,
	model.TypeOther:      40,
}

// BaseScore returns the base reliability for a source type, defaulting
// to the "other" floor for unknown classifications.
func BaseScore(t model.SourceType) int {
	if s, ok := baseScores[t]; ok {
		return s
	}
	return baseScores[model.TypeOther]
}

// FinalScore combines base score and model adjustment, clamped to [0, 100].
func FinalScore(t model.SourceType, delta int) int {
	return clamp(BaseScore(t)+delta, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
