package questions

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

//go:embed schema.json
var listSchema string

var (
	errCompletionFailed = errors.New("completion failed")
	errEmptyList        = errors.New("question list has no questions")
	errStructuredReply  = errors.New("reply is a JSON list of strings, not plain lines")
)

// Input is what every strategy sees: the raw completion and the round request.
type Input struct {
	Raw    string
	Failed bool
	Round  string
	Count  int
}

// Strategy turns a completion into a question list or rejects it.
type Strategy interface {
	Name() string
	Apply(in Input, logger *zap.Logger) ([]string, error)
}

// DefaultStrategies is the fallback chain: structured list, line split, generic list.
func DefaultStrategies() []Strategy {
	return []Strategy{
		&structuredStrategy{},
		&linesStrategy{},
		&genericStrategy{},
	}
}

type structuredStrategy struct{}

func (s *structuredStrategy) Name() string { return "structured" }

func (s *structuredStrategy) Apply(in Input, logger *zap.Logger) ([]string, error) {
	if in.Failed {
		return nil, errCompletionFailed
	}

	payload := extractList(stripCodeFence(in.Raw))

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(listSchema),
		gojsonschema.NewStringLoader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("parse question list: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("question list does not match schema: %s", strings.Join(problems, "; "))
	}

	var questions []string
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		return nil, fmt.Errorf("decode question list: %w", err)
	}

	kept := questions[:0]
	for _, q := range questions {
		if q = strings.TrimSpace(q); q != "" {
			kept = append(kept, q)
		}
	}
	questions = kept
	if len(questions) == 0 {
		return nil, errEmptyList
	}

	switch {
	case len(questions) > in.Count:
		logger.Warn("model returned more questions than requested, truncating",
			zap.Int("received", len(questions)),
			zap.Int("expected", in.Count),
		)
		questions = questions[:in.Count]
	case len(questions) < in.Count:
		logger.Warn("model returned fewer questions than requested",
			zap.Int("received", len(questions)),
			zap.Int("expected", in.Count),
		)
	}

	return questions, nil
}

type linesStrategy struct{}

func (s *linesStrategy) Name() string { return "lines" }

func (s *linesStrategy) Apply(in Input, _ *zap.Logger) ([]string, error) {
	if in.Failed {
		return nil, errCompletionFailed
	}

	text := stripCodeFence(in.Raw)
	var list []string
	if payload := extractList(text); strings.HasPrefix(payload, "[") && json.Unmarshal([]byte(payload), &list) == nil {
		return nil, errStructuredReply
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 || len(lines) < in.Count/2 {
		return nil, fmt.Errorf("got %d usable lines, need at least %d", len(lines), max(in.Count/2, 1))
	}

	if len(lines) > in.Count {
		lines = lines[:in.Count]
	}

	return lines, nil
}

type genericStrategy struct{}

func (s *genericStrategy) Name() string { return "generic" }

func (s *genericStrategy) Apply(in Input, _ *zap.Logger) ([]string, error) {
	return Generic(in.Round, in.Count), nil
}

// Generic returns the canned question list for a round, truncated to count.
func Generic(roundName string, count int) []string {
	questions := []string{
		fmt.Sprintf("Tell me about your experience relevant to the %s role based on your resume.", roundName),
		"What is your biggest strength related to this area?",
		"Can you describe a challenge you faced and how you overcame it?",
		"Where do you see yourself in 5 years?",
		"Do you have any questions for me?",
	}
	if count < 0 {
		count = 0
	}
	if count < len(questions) {
		questions = questions[:count]
	}
	return questions
}

func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if idx := strings.Index(raw, "\n"); idx != -1 {
			raw = raw[idx+1:]
		} else {
			raw = strings.TrimLeft(raw, "`")
		}
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}

// extractList trims any prose around the outermost JSON array.
func extractList(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end <= start {
		return text
	}
	return text[start : end+1]
}
