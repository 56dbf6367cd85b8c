package session

import (
	"errors"
	"testing"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/rounds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hrRound = rounds.Round{Key: "1", Name: "HR", Questions: 2}

func TestNewRequiresResume(t *testing.T) {
	_, err := New("  \n ")
	require.ErrorIs(t, err, ErrNoResume)

	s, err := New("Jane Doe, Go engineer")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, AwaitingRound, s.State())
}

func TestRoundLifecycle(t *testing.T) {
	s, err := New("resume")
	require.NoError(t, err)

	require.NoError(t, s.Begin(hrRound, []string{"Q one", "Q two"}))
	assert.Equal(t, RoundInProgress, s.State())

	question, ok := s.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "Q one", question)

	done, err := s.Record("first answer")
	require.NoError(t, err)
	assert.False(t, done)

	done, err = s.Record("   ")
	require.NoError(t, err)
	assert.True(t, done)

	_, ok = s.CurrentQuestion()
	assert.False(t, ok)

	assert.Equal(t, interview.Transcript{
		{Question: "Q one", Answer: "first answer"},
		{Question: "Q two", Answer: interview.NoResponse},
	}, s.Transcript())

	fb := &interview.Feedback{TotalScore: 12}
	require.NoError(t, s.Complete(fb, nil))
	assert.Equal(t, RoundComplete, s.State())

	got, gotErr := s.Feedback()
	assert.Same(t, fb, got)
	assert.NoError(t, gotErr)
}

func TestNextRoundKeepsResume(t *testing.T) {
	s, err := New("resume text v1")
	require.NoError(t, err)

	questions := []string{"a", "b", "c", "d"}
	require.NoError(t, s.Begin(rounds.Round{Name: "Managerial", Questions: 4}, questions))
	for range questions {
		_, err := s.Record("answer")
		require.NoError(t, err)
	}
	require.NoError(t, s.Complete(&interview.Feedback{TotalScore: 30}, nil))
	require.Equal(t, 4, s.Transcript().Len())

	require.NoError(t, s.NextRound())

	assert.Equal(t, AwaitingRound, s.State())
	assert.Equal(t, 0, s.Transcript().Len())
	assert.Equal(t, "resume text v1", s.ResumeText())
	fb, fbErr := s.Feedback()
	assert.Nil(t, fb)
	assert.NoError(t, fbErr)
	assert.Empty(t, s.Questions())
}

func TestTerminateDiscardsEverything(t *testing.T) {
	s, err := New("resume")
	require.NoError(t, err)
	require.NoError(t, s.Begin(hrRound, []string{"q"}))

	require.NoError(t, s.Terminate())

	assert.Equal(t, Terminated, s.State())
	assert.Empty(t, s.ResumeText())
	assert.Empty(t, s.Transcript())
	assert.NotEmpty(t, s.ID())
	assert.ErrorIs(t, s.Terminate(), ErrInvalidTransition)
}

func TestInvalidTransitions(t *testing.T) {
	s, err := New("resume")
	require.NoError(t, err)

	_, err = s.Record("answer")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.Complete(nil, nil), ErrInvalidTransition)
	assert.ErrorIs(t, s.NextRound(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Begin(hrRound, nil), ErrNoQuestions)

	require.NoError(t, s.Begin(hrRound, []string{"q1", "q2"}))
	assert.ErrorIs(t, s.Begin(hrRound, []string{"q"}), ErrInvalidTransition)
	assert.ErrorIs(t, s.Complete(nil, nil), ErrInvalidTransition, "round is not fully answered")
	assert.ErrorIs(t, s.NextRound(), ErrInvalidTransition)

	require.NoError(t, s.Terminate())
	assert.ErrorIs(t, s.Begin(hrRound, []string{"q"}), ErrInvalidTransition)
}

func TestCompleteCanReplaceFailedFeedback(t *testing.T) {
	s, err := New("resume")
	require.NoError(t, err)
	require.NoError(t, s.Begin(hrRound, []string{"q"}))
	_, err = s.Record("a")
	require.NoError(t, err)

	require.NoError(t, s.Complete(nil, errors.New("quota")))
	_, fbErr := s.Feedback()
	require.Error(t, fbErr)

	require.NoError(t, s.Complete(&interview.Feedback{TotalScore: 5}, nil))
	fb, fbErr := s.Feedback()
	require.NoError(t, fbErr)
	assert.Equal(t, 5, fb.TotalScore)
}

func TestMarkAnnouncedOncePerIndex(t *testing.T) {
	s, err := New("resume")
	require.NoError(t, err)
	assert.False(t, s.MarkAnnounced(), "nothing to announce before a round")

	require.NoError(t, s.Begin(hrRound, []string{"q1", "q2"}))
	assert.True(t, s.MarkAnnounced())
	assert.False(t, s.MarkAnnounced())

	_, err = s.Record("a")
	require.NoError(t, err)
	assert.True(t, s.MarkAnnounced())
	assert.False(t, s.MarkAnnounced())
}

func TestQuestionsAreCopied(t *testing.T) {
	s, err := New("resume")
	require.NoError(t, err)

	questions := []string{"q1"}
	require.NoError(t, s.Begin(hrRound, questions))
	questions[0] = "changed"

	got := s.Questions()
	assert.Equal(t, []string{"q1"}, got)
	got[0] = "changed again"
	assert.Equal(t, []string{"q1"}, s.Questions())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "round_complete", RoundComplete.String())
	assert.Equal(t, "state(9)", State(9).String())
}
