package grading

import "math"

type band struct {
	min      int
	grade    string
	feedback string
}

var bands = []band{
	{90, "A+ (Outstanding)", "Outstanding work. Your answers show thorough understanding and are consistently well explained."},
	{80, "A (Excellent)", "Excellent work. A few answers would reach the top band with more detailed examples."},
	{70, "B (Good)", "Good work. Develop your explanations further and link them explicitly to the key concepts."},
	{60, "C (Satisfactory)", "Satisfactory work. Several answers need more depth; use the key terms of each topic and justify your points."},
	{50, "D (Pass)", "You have passed. Review the marks per question and expand the answers that lost the most marks."},
	{math.MinInt, "F (Needs Improvement)", "This submission needs improvement. Revisit the core concepts and support each answer with an explanation and an example."},
}

// Percentage is round(100*awarded/available); ok is false when nothing was available.
func Percentage(awarded, available int) (int, bool) {
	if available <= 0 {
		return 0, false
	}
	return int(math.Round(100 * float64(awarded) / float64(available))), true
}

// Grade maps a percentage onto its letter band.
func Grade(pct int) string { return bandFor(pct).grade }

// Feedback is the encouragement text for a percentage band.
func Feedback(pct int) string { return bandFor(pct).feedback }

func bandFor(pct int) band {
	for _, b := range bands {
		if pct >= b.min {
			return b
		}
	}
	return bands[len(bands)-1]
}
