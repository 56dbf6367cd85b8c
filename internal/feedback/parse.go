package feedback

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/interview-coach/internal/interview"
)

const (
	// PlaceholderFeedback is kept when no overall feedback section is found.
	PlaceholderFeedback = "Could not parse feedback."
	// PlaceholderSuggestions is kept when no suggestions section is found.
	PlaceholderSuggestions = "Could not parse suggestions."
)

// TotalSource tells where the total score came from.
type TotalSource string

const (
	TotalExplicit TotalSource = "explicit"
	TotalSum      TotalSource = "sum"
	TotalPartial  TotalSource = "partial_sum"
	TotalNone     TotalSource = "none"
)

// maxScore is the top of the per-question scale.
const maxScore = 10

const (
	label         = `[*_\s]*:`
	lineStart     = `(?m:^)[#*_ \t]*`
	questionScore = `q\d+\s*score` + label
	totalLabel    = `total\s+score` + label
	scoresLabel   = `scores?(?:\s+per\s+question)?` + label
	suggestLabel  = `suggestions(?:\s+for\s+improvement)?` + label
	sectionEnd    = `(?:` + lineStart + `(?:` + suggestLabel + `|` + scoresLabel + `|` + questionScore + `|` + totalLabel + `)|\z)`
)

var (
	overallPattern     = regexp.MustCompile(`(?is)` + lineStart + `overall\s+feedback` + label + `(.*?)` + sectionEnd)
	suggestionsPattern = regexp.MustCompile(`(?is)` + lineStart + suggestLabel + `(.*?)` + sectionEnd)
	scorePattern       = regexp.MustCompile(`(?i)q\d+\s*score` + label + `[*_\s]*(\d+)\s*/\s*10`)
	totalPattern       = regexp.MustCompile(`(?i)` + totalLabel + `[*_\s]*(\d+)`)
)

// Parse extracts structured feedback from free model output. It never fails:
// missing sections keep placeholders and missing numbers stay empty or zero.
// questions is the transcript length the scores are reconciled against.
func Parse(raw string, questions int) *interview.Feedback {
	fb, _ := parse(raw, questions)
	return fb
}

func parse(raw string, questions int) (*interview.Feedback, TotalSource) {
	fb := &interview.Feedback{
		OverallFeedback:   PlaceholderFeedback,
		Suggestions:       PlaceholderSuggestions,
		ScoresPerQuestion: []int{},
		RawOutput:         raw,
	}

	var explicit *int
	if decoded, ok := decodeJSON(raw); ok {
		if text := cleanSection(decoded.OverallFeedback); text != "" {
			fb.OverallFeedback = text
		}
		if text := cleanSection(coerceText(decoded.Suggestions)); text != "" {
			fb.Suggestions = text
		}
		for _, score := range decoded.ScoresPerQuestion {
			fb.ScoresPerQuestion = append(fb.ScoresPerQuestion, min(max(score, 0), maxScore))
		}
		explicit = decoded.TotalScore
	} else {
		if match := overallPattern.FindStringSubmatch(raw); match != nil {
			if text := cleanSection(match[1]); text != "" {
				fb.OverallFeedback = text
			}
		}
		if match := suggestionsPattern.FindStringSubmatch(raw); match != nil {
			if text := cleanSection(match[1]); text != "" {
				fb.Suggestions = text
			}
		}
		for _, match := range scorePattern.FindAllStringSubmatch(raw, -1) {
			fb.ScoresPerQuestion = append(fb.ScoresPerQuestion, min(atoiSaturated(match[1]), maxScore))
		}
		if match := totalPattern.FindStringSubmatch(raw); match != nil {
			total := atoiSaturated(match[1])
			explicit = &total
		}
	}

	fb.ScoresMismatch = len(fb.ScoresPerQuestion) > 0 && len(fb.ScoresPerQuestion) != questions

	sum := 0
	for _, score := range fb.ScoresPerQuestion {
		sum += score
	}

	switch {
	case explicit != nil:
		fb.TotalScore = min(max(*explicit, 0), maxScore*max(questions, len(fb.ScoresPerQuestion), 1))
		return fb, TotalExplicit
	case len(fb.ScoresPerQuestion) == 0:
		return fb, TotalNone
	case !fb.ScoresMismatch:
		fb.TotalScore = sum
		return fb, TotalSum
	default:
		fb.TotalScore = sum
		return fb, TotalPartial
	}
}

type jsonFeedback struct {
	OverallFeedback   string `mapstructure:"overall_feedback"`
	Suggestions       any    `mapstructure:"suggestions"`
	ScoresPerQuestion []int  `mapstructure:"scores_per_question"`
	TotalScore        *int   `mapstructure:"total_score"`
}

// decodeJSON accepts a JSON object carrying the feedback fields, optionally fenced.
func decodeJSON(raw string) (*jsonFeedback, bool) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return nil, false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, false
	}

	var out jsonFeedback
	if err := mapstructure.WeakDecode(data, &out); err != nil {
		return nil, false
	}

	if out.OverallFeedback == "" && out.Suggestions == nil && len(out.ScoresPerQuestion) == 0 && out.TotalScore == nil {
		return nil, false
	}

	return &out, true
}

// atoiSaturated parses a run of digits, returning math.MaxInt when it overflows.
func atoiSaturated(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return math.MaxInt
	}
	return n
}

func cleanSection(s string) string {
	return strings.Trim(s, " \t\r\n*#_:")
}

// coerceText flattens a string or a list of strings into text.
func coerceText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			if text := strings.TrimSpace(coerceText(item)); text != "" {
				lines = append(lines, "- "+text)
			}
		}
		return strings.Join(lines, "\n")
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
