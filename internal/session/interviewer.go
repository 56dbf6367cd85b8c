package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/rounds"
	"github.com/spigell/interview-coach/internal/speech"

	"go.uber.org/zap"
)

// DefaultAnswerLimit caps the recording of a single spoken answer.
const DefaultAnswerLimit = 30 * time.Second

const (
	welcomeTemplate = "Welcome to the %s round. I will ask you %d questions based on your resume. Please answer clearly after I finish speaking."
	missedAnswer    = "I didn't catch that. Let's move to the next question."
	closingMessage  = "Thank you. That concludes the questions for this round."
)

// QuestionSource produces the questions of a round. It must not fail.
type QuestionSource interface {
	Generate(ctx context.Context, resumeText, roundName string, count int) []string
}

// FeedbackSource evaluates a finished round.
type FeedbackSource interface {
	Generate(ctx context.Context, resumeText, roundName string, transcript interview.Transcript) (*interview.Feedback, error)
}

// Announcer says text to the candidate without failing.
type Announcer interface {
	Announce(ctx context.Context, text string)
}

type Deps struct {
	Questions QuestionSource
	Feedback  FeedbackSource
	Announcer Announcer
	Logger    *zap.Logger
	// Out receives progress lines such as "Question 1/4:". Optional.
	Out io.Writer
}

type Config struct {
	AnswerLimit time.Duration
}

// Interviewer drives sessions through their rounds.
type Interviewer struct {
	deps        Deps
	answerLimit time.Duration
}

func NewInterviewer(cfg *Config, deps Deps) *Interviewer {
	limit := DefaultAnswerLimit
	if cfg != nil && cfg.AnswerLimit > 0 {
		limit = cfg.AnswerLimit
	}

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}

	return &Interviewer{deps: deps, answerLimit: limit}
}

// AnswerLimit is the recording cap applied by Conduct.
func (i *Interviewer) AnswerLimit() time.Duration {
	return i.answerLimit
}

// StartRound generates the round's questions and moves the session into it.
func (i *Interviewer) StartRound(ctx context.Context, s *Session, round rounds.Round) error {
	if s.State() != AwaitingRound {
		return s.invalid("begin round")
	}

	log := logger.WithSession(i.deps.Logger, s.ID(), round.Name)

	questions := i.deps.Questions.Generate(ctx, s.ResumeText(), round.Name, round.Questions)
	if err := s.Begin(round, questions); err != nil {
		return err
	}

	log.Info("round started",
		zap.Int("requested_questions", round.Questions),
		zap.Int("questions", len(questions)),
	)

	fmt.Fprintf(i.deps.Out, "\n--- Starting %s Round ---\n", round.Name)
	i.announce(ctx, fmt.Sprintf(welcomeTemplate, round.Name, len(questions)))

	return nil
}

// Announce speaks the current question unless it was already announced.
func (i *Interviewer) Announce(ctx context.Context, s *Session) bool {
	question, ok := s.CurrentQuestion()
	if !ok || !s.MarkAnnounced() {
		return false
	}

	fmt.Fprintf(i.deps.Out, "\nQuestion %d/%d:\n", s.Index()+1, len(s.questions))
	i.announce(ctx, question)

	return true
}

// Answer records an answer to the current question. After the last answer the
// round is closed and feedback is generated before Answer returns.
func (i *Interviewer) Answer(ctx context.Context, s *Session, text string) (bool, error) {
	done, err := s.Record(text)
	if err != nil {
		return false, err
	}

	log := logger.WithSession(i.deps.Logger, s.ID(), s.Round().Name)

	if interview.AnswerOrNoResponse(text) == interview.NoResponse {
		log.Info("no answer captured", zap.Int("question", s.Index()))
		i.announce(ctx, missedAnswer)
	}

	if !done {
		return false, nil
	}

	fmt.Fprintf(i.deps.Out, "\n--- %s Round Complete ---\n", s.Round().Name)
	i.announce(ctx, closingMessage)

	return true, i.generateFeedback(ctx, s, log)
}

// RetryFeedback generates the feedback of a completed round again.
func (i *Interviewer) RetryFeedback(ctx context.Context, s *Session) error {
	if s.State() != RoundComplete {
		return s.invalid("retry feedback")
	}

	return i.generateFeedback(ctx, s, logger.WithSession(i.deps.Logger, s.ID(), s.Round().Name))
}

// Conduct asks every remaining question of the round, capturing answers with listener.
// Capture failures are recorded as interview.NoResponse. The returned error is the
// feedback failure, if any; the session is RoundComplete either way.
func (i *Interviewer) Conduct(ctx context.Context, s *Session, listener speech.Listener) error {
	if s.State() != RoundInProgress {
		return s.invalid("conduct round")
	}

	log := logger.WithSession(i.deps.Logger, s.ID(), s.Round().Name)

	for {
		i.Announce(ctx, s)

		text, err := listener.Capture(ctx, i.answerLimit)
		if err != nil {
			log.Warn("answer capture failed", zap.Int("question", s.Index()+1), zap.Error(err))
			text = ""
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		done, err := i.Answer(ctx, s, text)
		if done || err != nil {
			return err
		}
	}
}

func (i *Interviewer) generateFeedback(ctx context.Context, s *Session, log *zap.Logger) error {
	fb, err := i.deps.Feedback.Generate(ctx, s.ResumeText(), s.Round().Name, s.Transcript())
	if cErr := s.Complete(fb, err); cErr != nil {
		return cErr
	}

	if err != nil {
		log.Warn("feedback is not available", zap.Error(err))
		return fmt.Errorf("generate feedback: %w", err)
	}

	log.Info("round feedback ready",
		zap.Int("total_score", fb.TotalScore),
		zap.Int("max_score", interview.MaxScore(s.Transcript().Len())),
		zap.Bool("scores_mismatch", fb.ScoresMismatch),
	)

	return nil
}

func (i *Interviewer) announce(ctx context.Context, text string) {
	if i.deps.Announcer != nil {
		i.deps.Announcer.Announce(ctx, text)
	}
}
