package grading

import (
	"github.com/mind-engage/mindengage-marker/internal/keywords"
)

// GeneralTopic is assigned when no topic vocabulary matches.
const GeneralTopic = "General Topic"

// Topic is one row of the fixed classification table.
type Topic struct {
	Name     string
	Keywords []string
	matcher  *keywords.Matcher
}

// Table order matters: ties resolve to the earlier topic.
var topicTable = buildTopics([]Topic{
	{Name: "Business Strategy", Keywords: []string{"strategy", "competitive", "competitor", "swot", "objective", "mission", "vision", "growth", "market share"}},
	{Name: "Financial Analysis", Keywords: []string{"profit", "revenue", "budget", "cash flow", "ratio", "investment", "balance sheet", "expense", "liquidity"}},
	{Name: "Marketing", Keywords: []string{"customer", "brand", "advertis", "promotion", "segment", "target market", "pricing", "consumer", "marketing mix"}},
	{Name: "Human Resources", Keywords: []string{"employee", "recruit", "training", "motivation", "performance", "leadership", "staff", "workforce", "organisational culture"}},
	{Name: "Operations Management", Keywords: []string{"production", "process", "quality", "supply chain", "inventory", "efficiency", "logistics", "capacity"}},
	{Name: "Research Methodology", Keywords: []string{"research", "methodology", "sample", "survey", "interview", "hypothesis", "qualitative", "quantitative", "data collection"}},
	{Name: "Programming", Keywords: []string{"function", "variable", "loop", "algorithm", "source code", "compile", "array", "debug", "recursion"}},
	{Name: "Science", Keywords: []string{"experiment", "observation", "energy", "reaction", "organism", "temperature", "molecule", "evidence", "theory"}},
	{Name: "Literature", Keywords: []string{"theme", "character", "narrative", "author", "poem", "symbolism", "metaphor", "novel", "imagery"}},
	{Name: "Ethics and Law", Keywords: []string{"ethical", "legal", "responsibility", "legislation", "rights", "compliance", "stakeholder", "governance"}},
})

func buildTopics(ts []Topic) []Topic {
	for i := range ts {
		ts[i].matcher = keywords.MustNew(ts[i].Keywords...)
	}
	return ts
}

// Topics returns the classification table in priority order.
func Topics() []Topic {
	out := make([]Topic, len(topicTable))
	copy(out, topicTable)
	return out
}

// TopicKeywords returns the vocabulary of a topic, nil for GeneralTopic or
// unknown names.
func TopicKeywords(name string) []string {
	if t, ok := topicByName(name); ok {
		return append([]string(nil), t.Keywords...)
	}
	return nil
}

func topicByName(name string) (Topic, bool) {
	for _, t := range topicTable {
		if t.Name == name {
			return t, true
		}
	}
	return Topic{}, false
}

// Classify picks the topic with the most distinct keywords present.
func Classify(text string) string {
	best, bestCount := GeneralTopic, 0
	for _, t := range topicTable {
		if n := t.matcher.Count(text); n > bestCount {
			best, bestCount = t.Name, n
		}
	}
	return best
}
