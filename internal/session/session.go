// Package session implements the interview round lifecycle.
package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/rounds"

	"github.com/google/uuid"
)

type State int

const (
	AwaitingRound State = iota
	RoundInProgress
	RoundComplete
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingRound:
		return "awaiting_round"
	case RoundInProgress:
		return "round_in_progress"
	case RoundComplete:
		return "round_complete"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrNoResume          = errors.New("resume text is required to start an interview")
	ErrNoQuestions       = errors.New("round has no questions")
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Session is the state of one candidate's interview. It is not safe for concurrent use.
type Session struct {
	id          string
	resumeText  string
	state       State
	round       rounds.Round
	questions   []string
	index       int
	transcript  interview.Transcript
	feedback    *interview.Feedback
	feedbackErr error
	announced   map[int]bool
}

// New starts a session for the given resume text.
func New(resumeText string) (*Session, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrNoResume
	}

	return &Session{
		id:         uuid.NewString(),
		resumeText: resumeText,
		state:      AwaitingRound,
		announced:  map[int]bool{},
	}, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) ResumeText() string { return s.resumeText }

func (s *Session) State() State { return s.state }

func (s *Session) Round() rounds.Round { return s.round }

// Index is the position of the next question to answer.
func (s *Session) Index() int { return s.index }

func (s *Session) Questions() []string {
	return slices.Clone(s.questions)
}

func (s *Session) Transcript() interview.Transcript {
	return slices.Clone(s.transcript)
}

// Feedback returns the result of the last feedback attempt of the current round.
func (s *Session) Feedback() (*interview.Feedback, error) {
	return s.feedback, s.feedbackErr
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (string, bool) {
	if s.state != RoundInProgress || s.index >= len(s.questions) {
		return "", false
	}
	return s.questions[s.index], true
}

// Begin enters a round with the questions that will be asked, in order.
func (s *Session) Begin(round rounds.Round, questions []string) error {
	if s.state != AwaitingRound {
		return s.invalid("begin round")
	}
	if len(questions) == 0 {
		return fmt.Errorf("%w: %s", ErrNoQuestions, round.Name)
	}

	s.round = round
	s.questions = slices.Clone(questions)
	s.index = 0
	s.transcript = interview.Transcript{}
	s.feedback = nil
	s.feedbackErr = nil
	s.announced = map[int]bool{}
	s.state = RoundInProgress

	return nil
}

// Record appends the answer to the current question and reports whether it was the last one.
// A blank answer is recorded as interview.NoResponse.
func (s *Session) Record(answer string) (bool, error) {
	if s.state != RoundInProgress || s.index >= len(s.questions) {
		return false, s.invalid("record answer")
	}

	s.transcript = append(s.transcript, interview.Entry{
		Question: s.questions[s.index],
		Answer:   interview.AnswerOrNoResponse(answer),
	})
	s.index++

	return s.index == len(s.questions), nil
}

// Complete stores the feedback of a fully answered round. It may be called again
// on a completed round to replace a failed attempt.
func (s *Session) Complete(feedback *interview.Feedback, err error) error {
	switch {
	case s.state == RoundInProgress && s.index == len(s.questions):
	case s.state == RoundComplete:
	default:
		return s.invalid("complete round")
	}

	s.feedback = feedback
	s.feedbackErr = err
	s.state = RoundComplete

	return nil
}

// NextRound clears the round and keeps the resume.
func (s *Session) NextRound() error {
	if s.state != RoundComplete {
		return s.invalid("start another round")
	}

	s.round = rounds.Round{}
	s.questions = nil
	s.index = 0
	s.transcript = interview.Transcript{}
	s.feedback = nil
	s.feedbackErr = nil
	s.announced = map[int]bool{}
	s.state = AwaitingRound

	return nil
}

// Terminate discards all state including the resume.
func (s *Session) Terminate() error {
	if s.state == Terminated {
		return s.invalid("terminate")
	}

	*s = Session{id: s.id, state: Terminated, announced: map[int]bool{}}

	return nil
}

// MarkAnnounced reports whether the current question has not been announced yet
// and marks it as announced.
func (s *Session) MarkAnnounced() bool {
	if _, ok := s.CurrentQuestion(); !ok || s.announced[s.index] {
		return false
	}
	s.announced[s.index] = true
	return true
}

func (s *Session) invalid(action string) error {
	return fmt.Errorf("%w: cannot %s in state %s", ErrInvalidTransition, action, s.state)
}
