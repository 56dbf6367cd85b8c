package questions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/interview-coach/internal/ai"

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
	calls    int
}

func (s *stubCompleter) Complete(_ context.Context, prompt string, opts ai.Options) (string, error) {
	s.calls++
	s.prompt = prompt
	s.opts = opts
	return s.response, s.err
}

func TestGenerateStructuredList(t *testing.T) {
	stub := &stubCompleter{response: "```json\n[\"Tell me about the payments rewrite.\", \"How did you scale Kafka?\"]\n```"}

	got := New(stub, zap.NewNop()).Generate(context.Background(), "Go engineer at Acme", "Technical", 2)

	assert.Equal(t, []string{"Tell me about the payments rewrite.", "How did you scale Kafka?"}, got)
	assert.Equal(t, 600, stub.opts.MaxTokens)
	assert.InDelta(t, 0.6, stub.opts.Temperature, 1e-9)
	assert.Contains(t, stub.prompt, "Go engineer at Acme")
	assert.Contains(t, stub.prompt, "'Technical' round")
	assert.Contains(t, stub.prompt, Guidance("Technical"))
	assert.Contains(t, stub.prompt, "generate 2 relevant interview questions")
}

func TestGenerateTruncatesLongList(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	stub := &stubCompleter{response: `["A?", "B?", "C?", "D?", "E?", "F?"]`}

	got := New(stub, zap.New(core)).Generate(context.Background(), "resume", "HR", 4)

	assert.Equal(t, []string{"A?", "B?", "C?", "D?"}, got)
	assert.Equal(t, 1, logs.FilterMessage("model returned more questions than requested, truncating").Len())
}

func TestGenerateAcceptsShortListWithoutPadding(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	stub := &stubCompleter{response: `Here you go: ["Only one?"]`}

	got := New(stub, zap.New(core)).Generate(context.Background(), "resume", "HR", 4)

	assert.Equal(t, []string{"Only one?"}, got)
	assert.Equal(t, 1, logs.FilterMessage("model returned fewer questions than requested").Len())
}

func TestGenerateFallsBackToLines(t *testing.T) {
	stub := &stubCompleter{response: "1. Describe your last project.\n\n2. What went wrong?\n3. What would you change?"}

	got := New(stub, zap.NewNop()).Generate(context.Background(), "resume", "Managerial", 4)

	assert.Equal(t, []string{"1. Describe your last project.", "2. What went wrong?", "3. What would you change?"}, got)
}

func TestGenerateLinesAreTruncated(t *testing.T) {
	stub := &stubCompleter{response: "Q one\nQ two\nQ three\nQ four"}

	got := New(stub, zap.NewNop()).Generate(context.Background(), "resume", "HR", 2)

	assert.Equal(t, []string{"Q one", "Q two"}, got)
}

func TestGenerateWrongElementTypesFallBack(t *testing.T) {
	stub := &stubCompleter{response: `[1, 2, 3, 4]`}

	got := New(stub, zap.NewNop()).Generate(context.Background(), "resume", "HR", 2)

	// a single line satisfies the half-count heuristic for two questions
	assert.Equal(t, []string{"[1, 2, 3, 4]"}, got)
}

func TestGenerateJSONListsNeverBecomeLines(t *testing.T) {
	tests := []struct {
		name     string
		response string
		count    int
		want     []string
	}{
		{name: "empty list for two", response: `[]`, count: 2, want: Generic("HR", 2)},
		{name: "empty list for three", response: `[]`, count: 3, want: Generic("HR", 3)},
		{name: "empty list for four", response: `[]`, count: 4, want: Generic("HR", 4)},
		{name: "fenced empty list for two", response: "```json\n[]\n```", count: 2, want: Generic("HR", 2)},
		{name: "fenced empty list for four", response: "```json\n[]\n```", count: 4, want: Generic("HR", 4)},
		{name: "only blanks", response: `["", "  "]`, count: 2, want: Generic("HR", 2)},
		{name: "blank entry for two", response: `["A?", "", "B?"]`, count: 2, want: []string{"A?", "B?"}},
		{name: "blank entry for three", response: `["A?", "", "B?"]`, count: 3, want: []string{"A?", "B?"}},
		{name: "blank entry for four", response: `["A?", "", "B?"]`, count: 4, want: []string{"A?", "B?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(&stubCompleter{response: tt.response}, zap.NewNop()).Generate(context.Background(), "resume", "HR", tt.count)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateFallsBackToGeneric(t *testing.T) {
	tests := []struct {
		name  string
		stub  *stubCompleter
		round string
		count int
	}{
		{name: "too few lines", stub: &stubCompleter{response: "not a list"}, round: "Technical", count: 5},
		{name: "empty response", stub: &stubCompleter{response: "   "}, round: "HR", count: 4},
		{name: "completion error", stub: &stubCompleter{err: errors.New("unavailable")}, round: "HR", count: 1},
		{name: "error text", stub: &stubCompleter{response: "Error: OpenAI Rate Limit Exceeded."}, round: "General", count: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.stub, zap.NewNop()).Generate(context.Background(), "resume", tt.round, tt.count)

			require.Equal(t, Generic(tt.round, tt.count), got)
			assert.Len(t, got, min(tt.count, 5))
		})
	}
}

func TestGenerateNeverExceedsCount(t *testing.T) {
	responses := []string{
		`["a","b","c","d","e","f","g"]`,
		"x\ny\nz\nw\nv\nu\nt",
		"",
		"Error: boom",
	}

	for _, response := range responses {
		for count := 1; count <= 7; count++ {
			got := New(&stubCompleter{response: response}, zap.NewNop()).Generate(context.Background(), "resume", "HR", count)
			assert.LessOrEqual(t, len(got), count, "response %q count %d", response, count)
			assert.NotEmpty(t, got)
			for _, q := range got {
				assert.NotEmpty(t, strings.TrimSpace(q))
			}
		}
	}
}

func TestGenerateWithoutQuestions(t *testing.T) {
	stub := &stubCompleter{response: `["A?"]`}

	got := New(stub, zap.NewNop()).Generate(context.Background(), "resume", "HR", 0)

	assert.Empty(t, got)
	assert.Zero(t, stub.calls)
}

func TestGenericList(t *testing.T) {
	all := Generic("Technical", 10)
	require.Len(t, all, 5)
	assert.Equal(t, "Tell me about your experience relevant to the Technical role based on your resume.", all[0])
	assert.Equal(t, "Do you have any questions for me?", all[4])

	assert.Len(t, Generic("HR", 3), 3)
	assert.Empty(t, Generic("HR", 0))
}

func TestGuidanceFallsBackToGeneral(t *testing.T) {
	assert.Equal(t, roundGuidance[generalRound], Guidance("System Design"))
	assert.Equal(t, roundGuidance["HR"], Guidance("hr"))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `["a"]`, stripCodeFence("```python\n[\"a\"]\n```"))
	assert.Equal(t, `["a"]`, stripCodeFence("  [\"a\"]  "))
}
