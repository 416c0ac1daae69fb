// Package batch sizes multi-document submissions so a shared, rate-limited
// completion service is not overwhelmed.
package batch

import (
	"github.com/mind-engage/mindengage-marker/internal/tokens"
)

type Category string

const (
	Small     Category = "small"
	Medium    Category = "medium"
	Large     Category = "large"
	VeryLarge Category = "very-large"
	TooLarge  Category = "too-large"
)

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Thresholds are inclusive upper bounds in estimated tokens.
type Thresholds struct {
	Small     int
	Medium    int
	Large     int
	VeryLarge int
}

// DefaultThresholds match the remote engine's per-chunk budget of
// DefaultChunkTokens: anything past VeryLarge cannot be marked at all.
var DefaultThresholds = Thresholds{Small: 2000, Medium: 8000, Large: 20000, VeryLarge: 40000}

// DefaultChunkTokens is the per-chunk budget used to estimate chunk counts.
const DefaultChunkTokens = 3000

// SizeProfile is derived from a document on demand and never stored.
type SizeProfile struct {
	EstimatedTokens int      `json:"estimated_tokens"`
	Category        Category `json:"category"`
	EstimatedChunks int      `json:"estimated_chunks"`
	Risk            Risk     `json:"risk"`
}

// Profile classifies text with the default thresholds.
func Profile(text string) SizeProfile {
	return DefaultAdvisor().Profile(text)
}

func (a Advisor) Profile(text string) SizeProfile {
	n := tokens.Estimate(text)
	p := SizeProfile{EstimatedTokens: n, EstimatedChunks: 1}
	switch {
	case n <= a.Thresholds.Small:
		p.Category, p.Risk = Small, RiskLow
	case n <= a.Thresholds.Medium:
		p.Category, p.Risk = Medium, RiskLow
	case n <= a.Thresholds.Large:
		p.Category, p.Risk = Large, RiskMedium
	case n <= a.Thresholds.VeryLarge:
		p.Category, p.Risk = VeryLarge, RiskHigh
	default:
		p.Category, p.Risk = TooLarge, RiskHigh
	}
	if p.Category != Small && a.ChunkTokens > 0 {
		p.EstimatedChunks = (n + a.ChunkTokens - 1) / a.ChunkTokens
	}
	return p
}
