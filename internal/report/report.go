// Package report renders round feedback for people and files.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spigell/interview-coach/internal/interview"

	"gopkg.in/yaml.v3"
)

// Report is the persisted outcome of a round.
type Report struct {
	SessionID  string               `yaml:"session_id"`
	Round      string               `yaml:"round"`
	CreatedAt  time.Time            `yaml:"created_at"`
	Transcript interview.Transcript `yaml:"transcript"`
	Feedback   *interview.Feedback  `yaml:"feedback"`
}

// Render prints the feedback of a round that had answered questions.
func Render(w io.Writer, roundName string, answered int, fb *interview.Feedback) {
	if fb == nil {
		fmt.Fprintln(w, "\nNo feedback available.")
		return
	}

	fmt.Fprintln(w, "\n--- Interview Feedback ---")
	fmt.Fprintf(w, "\nRound: %s\n", roundName)

	fmt.Fprintln(w, "\n[ Overall Feedback ]")
	fmt.Fprintln(w, fb.OverallFeedback)

	fmt.Fprintln(w, "\n[ Suggestions for Improvement ]")
	fmt.Fprintln(w, fb.Suggestions)

	fmt.Fprintln(w, "\n[ Scores per Question ]")
	switch {
	case len(fb.ScoresPerQuestion) > 0 && !fb.ScoresMismatch:
		for i, score := range fb.ScoresPerQuestion {
			fmt.Fprintf(w, "  Q%d: %d/10\n", i+1, score)
		}
	case len(fb.ScoresPerQuestion) > 0:
		fmt.Fprintf(w, "  (Raw scores: %s - count does not match %d answers, see raw output)\n", joinScores(fb.ScoresPerQuestion), answered)
	default:
		fmt.Fprintln(w, "  Scores not available or parsing failed.")
	}

	fmt.Fprintln(w, "\n[ Total Score for Round ]")
	if answered > 0 {
		fmt.Fprintf(w, "  %d / %d\n", fb.TotalScore, interview.MaxScore(answered))
	} else {
		fmt.Fprintf(w, "  %d / N/A\n", fb.TotalScore)
	}
}

// RenderRaw prints the unparsed model output.
func RenderRaw(w io.Writer, fb *interview.Feedback) {
	fmt.Fprintln(w, "\n[ Raw Feedback Output ]")
	if fb == nil || strings.TrimSpace(fb.RawOutput) == "" {
		fmt.Fprintln(w, "N/A")
		return
	}
	fmt.Fprintln(w, fb.RawOutput)
}

// DumpToTmpFile writes the report as YAML to a new temporary file and returns its name.
func (r *Report) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "interview_report_*.yaml")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := yaml.NewEncoder(file)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}

	return file.Name(), nil
}

func joinScores(scores []int) string {
	parts := make([]string, len(scores))
	for i, score := range scores {
		parts[i] = fmt.Sprint(score)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
