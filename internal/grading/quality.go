package grading

import (
	"strings"

	"github.com/mind-engage/mindengage-marker/internal/keywords"
)

// Quality labels, best first.
const (
	Excellent    = "excellent"
	Good         = "good"
	Satisfactory = "satisfactory"
	Poor         = "poor"
	Missing      = "missing"
)

// MaxQuality caps every score.
const MaxQuality = 0.95

var reasoning = map[string]string{
	Excellent:    "Comprehensive answer that covers the key concepts with clear explanation.",
	Good:         "Solid answer; most key concepts are addressed.",
	Satisfactory: "Adequate attempt, but some key concepts are missing or underdeveloped.",
	Poor:         "Limited answer; key concepts are largely missing.",
	Missing:      "No substantive answer was provided.",
}

var (
	connectives = keywords.MustNew("because", "therefore", "since", "thus", "hence", "as a result", "consequently", "due to")
	examples    = keywords.MustNew("example", "for instance", "such as", "e.g.", "illustrate")
)

// Quality is the heuristic judgement of one answer.
type Quality struct {
	Label     string  `json:"label"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
	Coverage  float64 `json:"coverage"`
	Words     int     `json:"words"`
}

// Score rates text against the vocabulary of topic.
func Score(text, topic string) Quality {
	var vocab *keywords.Matcher
	if t, ok := topicByName(topic); ok {
		vocab = t.matcher
	}
	return ScoreWith(text, vocab)
}

// ScoreWith rates text against an arbitrary vocabulary; nil means none.
//
// The constants are empirically tuned and form the behavioural contract:
// bonuses may add up past 1.0 before the cap is applied.
func ScoreWith(text string, vocab *keywords.Matcher) Quality {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < 10 {
		return Quality{Label: Missing, Score: 0, Reasoning: reasoning[Missing], Words: len(strings.Fields(trimmed))}
	}

	words := len(strings.Fields(trimmed))
	size := 0
	coverage := 0.0
	if vocab != nil {
		size = vocab.Size()
	}
	if size > 0 {
		coverage = float64(vocab.Count(trimmed)) / float64(size)
	}

	score := 0.85
	score += coverage * 0.30
	if words >= 15 {
		score += 0.04
	}
	if words >= 40 {
		score += 0.06
	}
	if words >= 80 {
		score += 0.08
	}
	if words >= 120 {
		score += 0.04
	}
	if connectives.Any(trimmed) {
		score += 0.09
	}
	if examples.Any(trimmed) {
		score += 0.06
	}

	switch {
	case words < 10:
		score *= 0.65
	case words < 20:
		score *= 0.95
	}
	if coverage == 0 && size > 0 {
		score *= 0.75
	}
	if score > MaxQuality {
		score = MaxQuality
	}

	label := LabelFor(score)
	return Quality{Label: label, Score: score, Reasoning: reasoning[label], Coverage: coverage, Words: words}
}

// LabelFor maps a score onto its quality label.
func LabelFor(score float64) string {
	switch {
	case score >= 0.85:
		return Excellent
	case score >= 0.75:
		return Good
	case score >= 0.60:
		return Satisfactory
	case score >= 0.40:
		return Poor
	default:
		return Missing
	}
}

// Reasoning returns the fixed explanation attached to a label.
func Reasoning(label string) string { return reasoning[label] }
