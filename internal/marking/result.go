package marking

import (
	"github.com/samber/lo"

	"github.com/mind-engage/mindengage-marker/internal/grading"
)

type ScoreItem struct {
	ID        string  `json:"id"`
	Topic     string  `json:"topic"`
	Awarded   int     `json:"awarded"`
	Max       int     `json:"max"`
	Quality   string  `json:"quality"`
	Reasoning string  `json:"reasoning"`
	Score     float64 `json:"score"`
}

// ScoreResult aggregates item marks. Percentage is nil when nothing was
// available to award.
type ScoreResult struct {
	Items          []ScoreItem `json:"items"`
	TotalAwarded   int         `json:"total_awarded"`
	TotalAvailable int         `json:"total_available"`
	Percentage     *int        `json:"percentage,omitempty"`
}

func newScoreResult(as []grading.Assessment) ScoreResult {
	items := lo.Map(as, func(a grading.Assessment, _ int) ScoreItem {
		return ScoreItem{
			ID:        a.ID,
			Topic:     a.Topic,
			Awarded:   a.Awarded,
			Max:       a.Max,
			Quality:   a.Quality,
			Reasoning: a.Reasoning,
			Score:     a.Score,
		}
	})
	return totals(items)
}

func totals(items []ScoreItem) ScoreResult {
	r := ScoreResult{
		Items:          items,
		TotalAwarded:   lo.SumBy(items, func(i ScoreItem) int { return i.Awarded }),
		TotalAvailable: lo.SumBy(items, func(i ScoreItem) int { return i.Max }),
	}
	if pct, ok := grading.Percentage(r.TotalAwarded, r.TotalAvailable); ok {
		r.Percentage = &pct
	}
	return r
}

// Grade is the letter band, empty when the percentage is undefined.
func (r ScoreResult) Grade() string {
	if r.Percentage == nil {
		return ""
	}
	return grading.Grade(*r.Percentage)
}
