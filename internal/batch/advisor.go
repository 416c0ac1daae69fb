package batch

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// MaxChunksPerDocument mirrors the remote engine's refusal threshold.
const MaxChunksPerDocument = 10

// TimeUnit is the nominal processing time of one small document.
const TimeUnit = 30 * time.Second

// Plan is computed fresh per submission and never mutated afterwards.
type Plan struct {
	RecommendedBatchSize  int           `json:"recommended_batch_size"`
	TotalBatches          int           `json:"total_batches"`
	Risk                  Risk          `json:"risk_level"`
	Reason                string        `json:"reason"`
	EstimatedTimePerBatch time.Duration `json:"estimated_time_per_batch_ns"`
	EstimatedTimeText     string        `json:"estimated_time_per_batch"`
	Profiles              []SizeProfile `json:"profiles"`
}

// Processable reports whether the plan allows any work at all.
func (p Plan) Processable() bool { return p.RecommendedBatchSize > 0 }

type Advisor struct {
	Thresholds  Thresholds
	ChunkTokens int
}

func DefaultAdvisor() Advisor {
	return Advisor{Thresholds: DefaultThresholds, ChunkTokens: DefaultChunkTokens}
}

// Recommend plans texts with the default advisor.
func Recommend(texts []string) Plan {
	return DefaultAdvisor().Recommend(texts)
}

// Recommend is a pure function of the documents' size profiles. Rules are
// evaluated in order and the first match wins.
func (a Advisor) Recommend(texts []string) Plan {
	profiles := lo.Map(texts, func(t string, _ int) SizeProfile { return a.Profile(t) })
	n := len(profiles)

	count := func(c Category) int {
		return lo.CountBy(profiles, func(p SizeProfile) bool { return p.Category == c })
	}
	tooLarge, veryLarge, large := count(TooLarge), count(VeryLarge), count(Large)
	maxChunks := lo.Max(lo.Map(profiles, func(p SizeProfile, _ int) int { return p.EstimatedChunks }))
	totalChunks := lo.SumBy(lo.Filter(profiles, func(p SizeProfile, _ int) bool { return p.Category != Small }),
		func(p SizeProfile) int { return p.EstimatedChunks })

	plan := Plan{Profiles: profiles}
	switch {
	case n == 0:
		plan.RecommendedBatchSize, plan.Risk, plan.Reason = 0, RiskLow, "no documents"
	case tooLarge > 0:
		plan.RecommendedBatchSize, plan.Risk = 0, RiskHigh
		plan.Reason = fmt.Sprintf("%d document(s) exceed the processing limit; split them before submitting", tooLarge)
	case maxChunks > MaxChunksPerDocument:
		plan.RecommendedBatchSize, plan.Risk = 1, RiskHigh
		plan.Reason = fmt.Sprintf("a document needs %d chunks; processing one at a time", maxChunks)
	case veryLarge >= 3:
		plan.RecommendedBatchSize, plan.Risk = 2, RiskHigh
		plan.Reason = fmt.Sprintf("%d very large documents", veryLarge)
	case veryLarge > 0:
		plan.RecommendedBatchSize, plan.Risk = 3, RiskMedium
		plan.Reason = fmt.Sprintf("%d very large document(s)", veryLarge)
	case large > 0 && totalChunks > 30:
		plan.RecommendedBatchSize, plan.Risk = 3, RiskMedium
		plan.Reason = fmt.Sprintf("large documents totalling %d chunks", totalChunks)
	case large > 0:
		plan.RecommendedBatchSize, plan.Risk = 5, RiskLow
		plan.Reason = fmt.Sprintf("%d large document(s)", large)
	case n > 20:
		plan.RecommendedBatchSize, plan.Risk = 10, RiskMedium
		plan.Reason = fmt.Sprintf("%d documents; limiting concurrency", n)
	case n > 10:
		plan.RecommendedBatchSize, plan.Risk = 8, RiskLow
		plan.Reason = fmt.Sprintf("%d documents", n)
	default:
		plan.RecommendedBatchSize, plan.Risk = n, RiskLow
		plan.Reason = "all documents fit in one batch"
	}

	if plan.RecommendedBatchSize > 0 {
		plan.TotalBatches = (n + plan.RecommendedBatchSize - 1) / plan.RecommendedBatchSize
		base := 1
		switch {
		case veryLarge > 0:
			base = 8
		case large > 0:
			base = 4
		}
		plan.EstimatedTimePerBatch = TimeUnit * time.Duration(base*plan.RecommendedBatchSize)
		plan.EstimatedTimeText = plan.EstimatedTimePerBatch.String()
	}
	return plan
}
