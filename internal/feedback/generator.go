// Package feedback scores a finished round and turns the model's free text into structured feedback.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/utils"

	"go.uber.org/zap"
)

const (
	maxTokens    = 1000
	temperature  = 0.5
	maxLogLength = 200
)

// ErrCompletionFailed is returned when the completion service could not produce feedback.
var ErrCompletionFailed = errors.New("feedback completion failed")

type Generator struct {
	completer ai.Completer
	logger    *zap.Logger
}

func New(completer ai.Completer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{completer: completer, logger: logger}
}

// Generate evaluates the transcript. Only a failed completion call returns an error;
// any model output, including garbage, yields a well-formed Feedback.
func (g *Generator) Generate(ctx context.Context, resumeText, roundName string, transcript interview.Transcript) (*interview.Feedback, error) {
	logger := g.logger.With(zap.String("round", roundName), zap.Int("answers", transcript.Len()))

	if g.completer == nil {
		return nil, fmt.Errorf("%w: completion service is not configured", ErrCompletionFailed)
	}

	raw, err := g.completer.Complete(ctx, buildPrompt(resumeText, roundName, transcript), ai.Options{
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if ai.Failed(raw, err) {
		if err == nil {
			err = errors.New(strings.TrimSpace(raw))
		}
		logger.Warn("feedback generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	logger.Debug("feedback response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, maxLogLength)),
	)

	fb, source := parse(raw, transcript.Len())

	if fb.ScoresMismatch {
		logger.Warn("parsed score count does not match answers, keeping raw scores",
			zap.Int("scores", len(fb.ScoresPerQuestion)),
			zap.Int("expected", transcript.Len()),
		)
	}
	if fb.OverallFeedback == PlaceholderFeedback || fb.Suggestions == PlaceholderSuggestions {
		logger.Warn("feedback sections could not be parsed",
			zap.String("response_preview", utils.TruncateForLog(raw, maxLogLength)),
		)
	}

	switch source {
	case TotalSum:
		logger.Info("calculated total score from individual scores", zap.Int("total", fb.TotalScore))
	case TotalPartial, TotalNone:
		logger.Warn("could not parse total score", zap.Int("fallback_total", fb.TotalScore))
	}

	return fb, nil
}
