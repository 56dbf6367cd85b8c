// Package speech holds the speech output and input boundaries of an interview.
package speech

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spigell/interview-coach/internal/utils"

	"go.uber.org/zap"
)

// Speaker says text aloud.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Listener captures one spoken answer and returns its text.
// An empty string means no usable audio was captured.
type Listener interface {
	Capture(ctx context.Context, maxDuration time.Duration) (string, error)
}

// DefaultPace approximates how fast the interviewer would have spoken, in words per second.
const DefaultPace = 3.0

// Announcer speaks through a Speaker and falls back to printing the text.
// It never fails.
type Announcer struct {
	speaker Speaker
	out     io.Writer
	pace    float64
	logger  *zap.Logger
}

// NewAnnouncer builds an Announcer. speaker may be nil for text-only announcements.
// pace controls the pause after a printed announcement; zero disables it.
func NewAnnouncer(speaker Speaker, out io.Writer, pace float64, logger *zap.Logger) *Announcer {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Announcer{speaker: speaker, out: out, pace: pace, logger: logger}
}

// Announce says text once.
func (a *Announcer) Announce(ctx context.Context, text string) {
	if a.speaker != nil {
		err := a.speaker.Speak(ctx, text)
		if err == nil {
			return
		}
		a.logger.Warn("speech output failed, printing text instead", zap.Error(err))
	}

	fmt.Fprintf(a.out, "Interviewer: %s\n", text)

	if err := utils.WaitFor(ctx, utils.ReadingTime(text, a.pace)); err != nil {
		a.logger.Debug("announcement pause interrupted", zap.Error(err))
	}
}
