package server

import (
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/rounds"
	"github.com/spigell/interview-coach/internal/session"
)

type sessionView struct {
	ID             string               `json:"id"`
	State          string               `json:"state"`
	Round          *rounds.Round        `json:"round,omitempty"`
	Question       string               `json:"question,omitempty"`
	QuestionNumber int                  `json:"question_number,omitempty"`
	TotalQuestions int                  `json:"total_questions,omitempty"`
	Transcript     interview.Transcript `json:"transcript"`
	Feedback       *interview.Feedback  `json:"feedback,omitempty"`
	FeedbackError  string               `json:"feedback_error,omitempty"`
	MaxScore       int                  `json:"max_score,omitempty"`
}

func newSessionView(s *session.Session) sessionView {
	view := sessionView{
		ID:         s.ID(),
		State:      s.State().String(),
		Transcript: s.Transcript(),
	}
	if view.Transcript == nil {
		view.Transcript = interview.Transcript{}
	}

	switch s.State() {
	case session.RoundInProgress, session.RoundComplete:
		round := s.Round()
		view.Round = &round
		view.TotalQuestions = len(s.Questions())
	}

	if question, ok := s.CurrentQuestion(); ok {
		view.Question = question
		view.QuestionNumber = s.Index() + 1
	}

	if s.State() == session.RoundComplete {
		fb, err := s.Feedback()
		view.Feedback = fb
		if err != nil {
			view.FeedbackError = err.Error()
		}
		view.MaxScore = interview.MaxScore(view.Transcript.Len())
	}

	return view
}
