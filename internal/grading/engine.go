package grading

import (
	"math"
	"strings"

	"github.com/mind-engage/mindengage-marker/internal/keywords"
)

// Assessment is the scored outcome of one answer unit or rubric section.
type Assessment struct {
	ID        string  `json:"id"`
	Topic     string  `json:"topic"`
	Awarded   int     `json:"awarded"`
	Max       int     `json:"max"`
	Quality   string  `json:"quality"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// Grader segments, classifies and scores free-text submissions.
type Grader struct {
	cfg config
}

// Engine options

type Option func(*config)

type config struct {
	MinUnitChars           int // spans shorter than this are noise
	FallbackParagraphChars int // paragraphs must exceed this to become sections
}

func WithMinUnitChars(n int) Option           { return func(c *config) { c.MinUnitChars = n } }
func WithFallbackParagraphChars(n int) Option { return func(c *config) { c.FallbackParagraphChars = n } }

var defaultGrader = NewGrader()

// NewGrader returns a Grader with the built-in thresholds.
func NewGrader(opts ...Option) *Grader {
	cfg := config{
		MinUnitChars:           10,
		FallbackParagraphChars: 50,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &Grader{cfg: cfg}
}

// Assess scores a unit against its topic vocabulary.
func (g *Grader) Assess(u AnswerUnit) Assessment {
	q := Score(u.Content, u.Topic)
	return Assessment{
		ID:        u.Label,
		Topic:     u.Topic,
		Awarded:   Award(u.MaxMarks, q.Score),
		Max:       u.MaxMarks,
		Quality:   q.Label,
		Score:     q.Score,
		Reasoning: q.Reasoning,
	}
}

// AssessRubric allocates marks section by section. Each section is matched
// to the unit that scores best against its vocabulary; with no units the
// whole text stands in. Each criterion is then scored on that unit.
func (g *Grader) AssessRubric(r Rubric, units []AnswerUnit, text string) []Assessment {
	out := make([]Assessment, 0, len(r.Sections))
	for _, s := range r.Sections {
		answer, topic := g.bestAnswer(s, units, text)
		a := Assessment{ID: s.Name, Topic: topic, Max: s.TotalMarks}
		var missing []string
		for _, c := range s.Criteria {
			q := ScoreWith(answer, c.matcher())
			a.Awarded += Award(c.MaxMarks, q.Score)
			if s.TotalMarks > 0 {
				a.Score += q.Score * float64(c.MaxMarks) / float64(s.TotalMarks)
			}
			if len(c.RequiredConcepts) > 0 && !keywords.MustNew(c.RequiredConcepts...).Any(answer) {
				missing = append(missing, c.RequiredConcepts...)
			}
		}
		a.Quality = LabelFor(a.Score)
		a.Reasoning = Reasoning(a.Quality)
		if len(missing) > 0 {
			a.Reasoning += " Not addressed: " + strings.Join(missing, ", ") + "."
		}
		out = append(out, a)
	}
	return out
}

func (g *Grader) bestAnswer(s Section, units []AnswerUnit, text string) (string, string) {
	if len(units) == 0 {
		return text, Classify(text)
	}
	vocab := s.matcher()
	name := fold(s.Name)
	best, bestScore, bestDist := 0, -1.0, math.MaxInt
	for i, u := range units {
		score := ScoreWith(u.Content, vocab).Score
		dist := editDistance(name, fold(u.Label))
		if score > bestScore || (score == bestScore && dist < bestDist) {
			best, bestScore, bestDist = i, score, dist
		}
	}
	return units[best].Content, units[best].Topic
}

// Award converts a quality score into whole marks out of maxMarks.
func Award(maxMarks int, score float64) int {
	return int(math.Round(float64(maxMarks) * score))
}
