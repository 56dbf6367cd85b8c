package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spigell/interview-coach/internal/ai/gemini"
	"github.com/spigell/interview-coach/internal/feedback"
	"github.com/spigell/interview-coach/internal/questions"
	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/rounds"
	"github.com/spigell/interview-coach/internal/secrets"
	"github.com/spigell/interview-coach/internal/session"
	"github.com/spigell/interview-coach/internal/speech"

	"go.uber.org/zap"
)

// components are the wired collaborators shared by the run and serve commands.
type components struct {
	catalog     *rounds.Catalog
	resumes     *resume.Extractor
	interviewer *session.Interviewer
	// listener is set in voice mode only.
	listener speech.Listener
}

func newComponents(ctx context.Context, config *Config, out io.Writer, logger *zap.Logger) (*components, error) {
	catalog, err := config.Catalog()
	if err != nil {
		return nil, err
	}

	apiKey, err := config.apiKey()
	if err != nil {
		return nil, err
	}
	logger.Debug("gemini api key resolved", zap.String("api_key", secrets.Mask(apiKey)))

	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:       apiKey,
		Model:        config.Gemini.Model,
		SpeechModel:  config.Gemini.SpeechModel,
		Voice:        config.Gemini.Voice,
		MaxRetries:   config.Gemini.MaxRetries,
		MaxLogLength: config.Gemini.MaxLogLength,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create gemini generator: %w", err)
	}

	c := &components{
		catalog: catalog,
		resumes: resume.New(resume.PDFToText{Command: config.Resume.PDFToText}, generator, logger),
	}

	var speaker speech.Speaker
	if config.Speech.Mode == ModeVoice {
		speaker = speech.NewSynthSpeaker(generator, &speech.CommandPlayer{
			Command: commandOrDefault(config.Speech.PlayerCommand, speech.DefaultPlayerCommand),
		})
		c.listener = speech.NewVoiceListener(&speech.CommandRecorder{
			Command: commandOrDefault(config.Speech.RecorderCommand, speech.DefaultRecorderCommand),
		}, generator)
	}

	c.interviewer = session.NewInterviewer(&session.Config{AnswerLimit: config.Speech.AnswerLimit}, session.Deps{
		Questions: questions.New(generator, logger),
		Feedback:  feedback.New(generator, logger),
		Announcer: speech.NewAnnouncer(speaker, out, config.Speech.Pace, logger),
		Logger:    logger,
		Out:       out,
	})

	logger.Info("components ready",
		zap.String("model", generator.Model()),
		zap.String("speech_mode", config.Speech.Mode),
		zap.Strings("rounds", catalog.Names()),
	)

	return c, nil
}

func commandOrDefault(command, fallback []string) []string {
	if len(command) == 0 {
		return fallback
	}
	return command
}
