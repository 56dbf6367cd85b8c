package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubCompleter struct {
	response string
	err      error
	prompt   string
	opts     ai.Options
}

func (s *stubCompleter) Complete(_ context.Context, prompt string, opts ai.Options) (string, error) {
	s.prompt = prompt
	s.opts = opts
	return s.response, s.err
}

var transcript = interview.Transcript{
	{Question: "Why do you want this role?", Answer: "I enjoy distributed systems."},
	{Question: "Describe a conflict.", Answer: interview.NoResponse},
}

func TestGenerateBuildsPromptAndParses(t *testing.T) {
	stub := &stubCompleter{response: "Overall Feedback: good\nSuggestions: answer every question\nQ1 Score: 7/10\nQ2 Score: 0/10"}

	fb, err := New(stub, zap.NewNop()).Generate(context.Background(), "Senior Go engineer", "HR", transcript)
	require.NoError(t, err)

	assert.Equal(t, []int{7, 0}, fb.ScoresPerQuestion)
	assert.Equal(t, 7, fb.TotalScore)
	assert.Equal(t, stub.response, fb.RawOutput)

	assert.Equal(t, 1000, stub.opts.MaxTokens)
	assert.InDelta(t, 0.5, stub.opts.Temperature, 1e-9)
	assert.Contains(t, stub.prompt, "'HR' round")
	assert.Contains(t, stub.prompt, "Senior Go engineer")
	assert.Contains(t, stub.prompt, "Q: Why do you want this role?\nA: I enjoy distributed systems.\nQ: Describe a conflict.\nA: [No response recorded]")
	assert.Contains(t, stub.prompt, "1. Relevance: How well does the answer address the question? (0-3 points)")
	assert.Contains(t, stub.prompt, "4. Resume Alignment: How well does the answer align with the candidate's resume? (0-2 points)")
	assert.Contains(t, stub.prompt, "Score each of the 2 answers")
}

func TestRubricAddsUpToTen(t *testing.T) {
	total := 0
	for _, c := range Rubric {
		total += c.Max
	}
	assert.Equal(t, 10, total)
}

func TestGenerateGarbageNeverFails(t *testing.T) {
	for _, response := range []string{"", "%%%", "Total Score: nope"} {
		fb, err := New(&stubCompleter{response: response}, zap.NewNop()).Generate(context.Background(), "resume", "HR", transcript)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, fb.TotalScore, 0)
		assert.Equal(t, PlaceholderFeedback, fb.OverallFeedback)
	}
}

func TestGenerateCompletionFailure(t *testing.T) {
	tests := []struct {
		name string
		stub *stubCompleter
	}{
		{name: "error", stub: &stubCompleter{err: errors.New("deadline exceeded")}},
		{name: "error text", stub: &stubCompleter{response: "Error: OpenAI Authentication Failed."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, err := New(tt.stub, zap.NewNop()).Generate(context.Background(), "resume", "HR", transcript)
			require.ErrorIs(t, err, ErrCompletionFailed)
			assert.Nil(t, fb)
		})
	}
}

func TestGenerateLogsMismatch(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	stub := &stubCompleter{response: "Overall Feedback: x\nSuggestions: y\nQ1 Score: 5/10"}

	fb, err := New(stub, zap.New(core)).Generate(context.Background(), "resume", "HR", transcript)
	require.NoError(t, err)

	assert.True(t, fb.ScoresMismatch)
	assert.Equal(t, 5, fb.TotalScore)
	assert.Equal(t, 1, logs.FilterMessage("parsed score count does not match answers, keeping raw scores").Len())
}
