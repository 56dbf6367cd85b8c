package feedback

import (
	_ "embed"
	"strconv"
	"strings"

	"github.com/spigell/interview-coach/internal/interview"
)

//go:embed prompt.md
var promptTemplate string

// Criterion is one weighted part of the per-answer score.
type Criterion struct {
	Name        string
	Description string
	Max         int
}

// Rubric adds up to ten points per answer.
var Rubric = []Criterion{
	{Name: "Relevance", Description: "How well does the answer address the question?", Max: 3},
	{Name: "Clarity", Description: "How clear and concise is the answer?", Max: 2},
	{Name: "Detail/Examples", Description: "Does the answer provide sufficient detail or examples (like the STAR method where applicable)?", Max: 3},
	{Name: "Resume Alignment", Description: "How well does the answer align with the candidate's resume?", Max: 2},
}

func renderRubric() string {
	var b strings.Builder
	b.WriteString("Score each answer out of 10 based on the following criteria:\n")
	for i, c := range Rubric {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(c.Name)
		b.WriteString(": ")
		b.WriteString(c.Description)
		b.WriteString(" (0-")
		b.WriteString(strconv.Itoa(c.Max))
		b.WriteString(" points)\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func buildPrompt(resumeText, roundName string, transcript interview.Transcript) string {
	return strings.NewReplacer(
		"{{ROUND}}", roundName,
		"{{NO_RESPONSE}}", interview.NoResponse,
		"{{RESUME}}", strings.TrimSpace(resumeText),
		"{{TRANSCRIPT}}", transcript.Format(),
		"{{COUNT}}", strconv.Itoa(transcript.Len()),
		"{{RUBRIC}}", renderRubric(),
	).Replace(promptTemplate)
}
