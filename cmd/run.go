package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/report"
	"github.com/spigell/interview-coach/internal/session"
	"github.com/spigell/interview-coach/internal/speech"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptAnotherRound  = "Start Another Round"
	PromptRetryFeedback = "Retry Feedback"
	PromptRawFeedback   = "Show Raw Feedback"
	PromptDumpToFile    = "Dump Feedback To File"
	PromptNewResume     = "Upload New Resume"
	PromptExit          = "Exit"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive interview",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "path to the resume (pdf, docx, html, txt or md)")
	runCmd.Flags().StringP("mode", "m", "", "answer mode: voice or text (default from config)")

	viper.BindPFlag("speech.mode", runCmd.Flags().Lookup("mode"))
}

// run is the interactive interview command.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the interview-coach", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	deps, err := newComponents(ctx, config, os.Stdout, logger)
	if err != nil {
		logger.Fatal("preparing components", zap.Error(err))
	}

	resumePath, _ := cmd.Flags().GetString("resume")

	for {
		sess, err := openSession(ctx, deps, resumePath, logger)
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			logger.Info("exiting")
			return
		}
		if err != nil {
			logger.Fatal("starting a session",
				zap.Error(err),
				zap.String("hint", "use a resume with selectable text or a supported format"),
			)
		}

		err = conductRounds(ctx, deps, sess, cancel, logger)
		switch {
		case errors.Is(err, errNewResume):
			resumePath = ""
			continue
		case errors.Is(err, errExit), errors.Is(err, context.Canceled),
			errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
			logger.Info("exiting")
			return
		case err != nil:
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

var errNewResume = errors.New("new resume requested")

// openSession extracts the resume, asking for its path when none is given.
func openSession(ctx context.Context, deps *components, path string, logger *zap.Logger) (*session.Session, error) {
	if strings.TrimSpace(path) == "" {
		p := promptui.Prompt{
			Label: "Path to your resume",
			Validate: func(input string) error {
				info, err := os.Stat(strings.TrimSpace(input))
				if err != nil {
					return err
				}
				if info.IsDir() {
					return errors.New("a file is required")
				}
				return nil
			},
		}

		input, err := p.Run()
		if err != nil {
			return nil, err
		}
		path = strings.TrimSpace(input)
	}

	text, err := deps.resumes.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(text)
	if err != nil {
		return nil, err
	}

	logger.Info("session started", zap.String("session_id", sess.ID()), zap.String("resume", path))

	return sess, nil
}

// conductRounds runs rounds until the candidate exits or asks for a new resume.
func conductRounds(ctx context.Context, deps *components, sess *session.Session, cancel context.CancelFunc, log *zap.Logger) error {
	for {
		roundPrompt := promptui.Select{
			Label: "Select an interview round",
			Items: append(deps.catalog.Names(), PromptExit),
		}

		_, choice, err := roundPrompt.Run()
		if err != nil {
			return err
		}
		if choice == PromptExit {
			_ = sess.Terminate()
			return errExit
		}

		round, err := deps.catalog.Lookup(choice)
		if err != nil {
			return err
		}

		if err := deps.interviewer.StartRound(ctx, sess, round); err != nil {
			return err
		}

		err = deps.interviewer.Conduct(ctx, sess, answerListener(deps, os.Stdout, cancel))
		if errors.Is(err, context.Canceled) {
			return err
		}
		if err != nil {
			logger.WithSession(log, sess.ID(), round.Name).Warn("feedback could not be generated", zap.Error(err))
		}

		fb, _ := sess.Feedback()
		report.Render(os.Stdout, round.Name, sess.Transcript().Len(), fb)

		if err := afterRound(ctx, deps, sess, log); err != nil {
			return err
		}
	}
}

// afterRound shows the post-round menu until the candidate moves on.
func afterRound(ctx context.Context, deps *components, sess *session.Session, log *zap.Logger) error {
	for {
		items := []string{PromptAnotherRound}
		if _, fbErr := sess.Feedback(); fbErr != nil {
			items = append(items, PromptRetryFeedback)
		}
		items = append(items, PromptRawFeedback, PromptDumpToFile, PromptNewResume, PromptExit)

		menu := promptui.Select{Label: "What next?", Items: items}
		_, action, err := menu.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptAnotherRound:
			return sess.NextRound()
		case PromptRetryFeedback:
			if err := deps.interviewer.RetryFeedback(ctx, sess); err != nil {
				log.Warn("feedback could not be generated", zap.Error(err))
				continue
			}
			fb, _ := sess.Feedback()
			report.Render(os.Stdout, sess.Round().Name, sess.Transcript().Len(), fb)
		case PromptRawFeedback:
			fb, _ := sess.Feedback()
			report.RenderRaw(os.Stdout, fb)
		case PromptDumpToFile:
			fb, _ := sess.Feedback()
			r := &report.Report{
				SessionID:  sess.ID(),
				Round:      sess.Round().Name,
				CreatedAt:  time.Now().UTC(),
				Transcript: sess.Transcript(),
				Feedback:   fb,
			}
			filename, err := r.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump feedback to file: %w", err)
			}
			log.Info("dumping feedback to file", zap.String("filename", filename))
		case PromptNewResume:
			_ = sess.Terminate()
			return errNewResume
		case PromptExit:
			_ = sess.Terminate()
			return errExit
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func answerListener(deps *components, out io.Writer, cancel context.CancelFunc) speech.Listener {
	if deps.listener != nil {
		return &noticeListener{next: deps.listener, out: out}
	}
	return &typedListener{cancel: cancel}
}

// noticeListener tells the candidate that recording has started.
type noticeListener struct {
	next speech.Listener
	out  io.Writer
}

func (l *noticeListener) Capture(ctx context.Context, limit time.Duration) (string, error) {
	fmt.Fprintf(l.out, "Listening for up to %s...\n", limit)
	return l.next.Capture(ctx, limit)
}

// typedListener reads an answer from the terminal. Interrupting the prompt cancels the interview.
type typedListener struct {
	cancel context.CancelFunc
}

func (l *typedListener) Capture(_ context.Context, _ time.Duration) (string, error) {
	p := promptui.Prompt{Label: "Your answer (leave empty to skip)"}

	answer, err := p.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		l.cancel()
		return "", err
	}

	return answer, err
}
