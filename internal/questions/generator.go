// Package questions turns a resume and a round into an ordered list of interview questions.
package questions

import (
	"context"
	"unicode/utf8"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/utils"

	"go.uber.org/zap"
)

const (
	tokensPerQuestion = 300
	temperature       = 0.6
	maxLogLength      = 200
)

// Generator asks the completion service for questions and applies the fallback chain.
type Generator struct {
	completer  ai.Completer
	strategies []Strategy
	logger     *zap.Logger
}

func New(completer ai.Completer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		completer:  completer,
		strategies: DefaultStrategies(),
		logger:     logger,
	}
}

// Generate returns at most count questions. It never fails: when the model output
// is unusable the generic list is returned.
func (g *Generator) Generate(ctx context.Context, resumeText, roundName string, count int) []string {
	logger := g.logger.With(zap.String("round", roundName), zap.Int("requested", count))

	if count <= 0 {
		logger.Warn("no questions requested")
		return []string{}
	}

	prompt := buildPrompt(resumeText, roundName, count)

	var (
		raw string
		err error
	)
	if g.completer != nil {
		raw, err = g.completer.Complete(ctx, prompt, ai.Options{
			MaxTokens:   tokensPerQuestion * count,
			Temperature: temperature,
		})
	}
	failed := g.completer == nil || ai.Failed(raw, err)

	if failed {
		logger.Warn("question generation failed, using fallback",
			zap.Error(err),
			zap.String("response_preview", utils.TruncateForLog(raw, maxLogLength)),
		)
	} else {
		logger.Debug("question generation response",
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", utils.TruncateForLog(raw, maxLogLength)),
		)
	}

	in := Input{Raw: raw, Failed: failed, Round: roundName, Count: count}
	for _, strategy := range g.strategies {
		questions, err := strategy.Apply(in, logger)
		if err != nil {
			logger.Info("question strategy rejected",
				zap.String("name", strategy.Name()),
				zap.Error(err),
			)
			continue
		}

		logger.Info("question strategy",
			zap.String("name", strategy.Name()),
			zap.Int("questions", len(questions)),
		)
		return questions
	}

	return Generic(roundName, count)
}
