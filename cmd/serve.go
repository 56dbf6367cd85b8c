package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve interview sessions over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address (default from config, :8080)")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	deps, err := newComponents(ctx, httpConfig(config), os.Stdout, logger)
	if err != nil {
		logger.Fatal("preparing components", zap.Error(err))
	}

	srv := server.New(&server.Config{
		Addr:           config.Server.Addr,
		AllowOrigins:   config.Server.AllowOrigins,
		MaxUploadBytes: config.Server.MaxUploadBytes,
		SessionTTL:     config.Server.SessionTTL,
	}, server.Deps{
		Catalog:     deps.catalog,
		Interviewer: deps.interviewer,
		Resumes:     deps.resumes,
		Logger:      logger,
	})

	logger.Info("starting the interview-coach server", zap.String("version", version))

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}

// httpConfig turns off the reading pause after each announced question.
// Requests hold the session lock while the question is announced.
func httpConfig(config *Config) *Config {
	c := *config
	c.Speech.Pace = 0
	return &c
}
