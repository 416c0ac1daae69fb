package marking

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/olekukonko/tablewriter"
)

const unknownLanguage = "Unknown"

// Render formats a report as markdown.
func Render(r Report) string {
	var b strings.Builder
	b.WriteString("# Marking Report\n\n")
	fmt.Fprintf(&b, "Student: %s\n", r.Student)
	fmt.Fprintf(&b, "Assignment: %s\n", r.Assignment)
	fmt.Fprintf(&b, "Detected Type: %s\n", r.DetectedType)
	fmt.Fprintf(&b, "Language: %s\n", r.Language)
	method := r.Method
	if r.Rubric != "" {
		method += " - " + r.Rubric
	}
	fmt.Fprintf(&b, "Marking Method: %s\n\n", method)

	res := r.Result
	if res.Percentage != nil {
		fmt.Fprintf(&b, "Overall Score: %d / %d = %d%%\n", res.TotalAwarded, res.TotalAvailable, *res.Percentage)
		fmt.Fprintf(&b, "Grade: %s\n\n", r.Grade)
	} else {
		fmt.Fprintf(&b, "Overall Score: %d / %d = n/a\n", res.TotalAwarded, res.TotalAvailable)
		b.WriteString("Grade: n/a\n\n")
	}

	if len(res.Items) > 0 {
		table := tablewriter.NewWriter(&b)
		table.SetHeader([]string{"Question", "Topic", "Marks"})
		table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		table.SetCenterSeparator("|")
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		for _, it := range res.Items {
			table.Append([]string{it.ID, it.Topic, marks(it)})
		}
		table.Render()
		b.WriteString("\n")
	}

	if r.Feedback != "" {
		b.WriteString("## Feedback\n\n")
		b.WriteString(r.Feedback)
		b.WriteString("\n\n")
	}

	if len(res.Items) > 0 {
		b.WriteString("## Details\n\n")
		for _, it := range res.Items {
			fmt.Fprintf(&b, "- %s (%s): %s. %s\n", it.ID, it.Quality, marks(it), it.Reasoning)
		}
	}
	return b.String()
}

func marks(it ScoreItem) string {
	return fmt.Sprintf("%d/%d", it.Awarded, it.Max)
}

func detectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return unknownLanguage
	}
	info := whatlanggo.Detect(text)
	name := info.Lang.String()
	if name == "" {
		return unknownLanguage
	}
	return name
}
