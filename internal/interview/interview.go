// Package interview holds the values exchanged between the question generator,
// the session and the feedback generator.
package interview

import (
	"fmt"
	"strings"
)

// NoResponse is recorded in place of an answer that could not be captured.
const NoResponse = "[No response recorded]"

const maxPerQuestion = 10

// Entry pairs an asked question with the answer collected for it.
type Entry struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Transcript is the ordered record of one round.
type Transcript []Entry

// AnswerOrNoResponse maps a blank capture to the NoResponse sentinel.
func AnswerOrNoResponse(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return NoResponse
	}
	return text
}

func (t Transcript) Len() int {
	return len(t)
}

// Format renders the transcript as alternating question and answer lines.
func (t Transcript) Format() string {
	lines := make([]string, 0, len(t)*2)
	for _, entry := range t {
		lines = append(lines,
			fmt.Sprintf("Q: %s", entry.Question),
			fmt.Sprintf("A: %s", entry.Answer),
		)
	}
	return strings.Join(lines, "\n")
}

// MaxScore is the best possible total for a round of n questions.
func MaxScore(n int) int {
	if n < 0 {
		return 0
	}
	return n * maxPerQuestion
}

// Feedback is the structured evaluation of a finished round.
type Feedback struct {
	OverallFeedback   string `json:"overall_feedback" yaml:"overall_feedback"`
	Suggestions       string `json:"suggestions" yaml:"suggestions"`
	ScoresPerQuestion []int  `json:"scores_per_question" yaml:"scores_per_question"`
	TotalScore        int    `json:"total_score" yaml:"total_score"`
	// ScoresMismatch is set when the number of parsed scores differs from the transcript length.
	ScoresMismatch bool `json:"scores_mismatch" yaml:"scores_mismatch"`
	// RawOutput is the unmodified model response.
	RawOutput string `json:"raw_output" yaml:"raw_output"`
}
