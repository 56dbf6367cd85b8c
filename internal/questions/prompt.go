package questions

import (
	_ "embed"
	"strconv"
	"strings"
)

//go:embed prompt.md
var promptTemplate string

const generalRound = "General"

var roundGuidance = map[string]string{
	"HR":         "Focus on behavioral questions, cultural fit, salary expectations (ask indirectly), and general background.",
	"Technical":  "Focus on specific technical skills, technologies, and project experiences mentioned in the resume. Ask problem-solving or coding concept questions relevant to the skills.",
	"Managerial": "Focus on leadership potential, team collaboration, conflict resolution, project management approaches, and career goals.",
	generalRound: "Ask a mix of behavioral, situational, and resume-based questions.",
}

// Guidance returns the style hint for a round. Unknown rounds get the General hint.
func Guidance(roundName string) string {
	for name, hint := range roundGuidance {
		if strings.EqualFold(name, strings.TrimSpace(roundName)) {
			return hint
		}
	}
	return roundGuidance[generalRound]
}

func buildPrompt(resumeText, roundName string, count int) string {
	return strings.NewReplacer(
		"{{COUNT}}", strconv.Itoa(count),
		"{{ROUND}}", roundName,
		"{{GUIDANCE}}", Guidance(roundName),
		"{{RESUME}}", strings.TrimSpace(resumeText),
	).Replace(promptTemplate)
}
