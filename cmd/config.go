package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/interview-coach/internal/rounds"
	"github.com/spigell/interview-coach/internal/secrets"
	"github.com/spigell/interview-coach/internal/session"
	"github.com/spigell/interview-coach/internal/speech"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	ModeVoice = "voice"
	ModeText  = "text"
)

type Config struct {
	Gemini GeminiConfig   `mapstructure:"gemini"`
	Speech SpeechConfig   `mapstructure:"speech"`
	Resume ResumeConfig   `mapstructure:"resume"`
	Server ServerConfig   `mapstructure:"server"`
	Rounds []rounds.Round `mapstructure:"rounds"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	SpeechModel  string `mapstructure:"speech-model"`
	Voice        string `mapstructure:"voice"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=1,lte=10"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type SpeechConfig struct {
	// Mode is "voice" for spoken questions and recorded answers or "text" for typed answers.
	Mode            string        `mapstructure:"mode" validate:"oneof=voice text"`
	AnswerLimit     time.Duration `mapstructure:"answer-limit" validate:"gte=1s,lte=10m"`
	Pace            float64       `mapstructure:"pace" validate:"gte=0"`
	PlayerCommand   []string      `mapstructure:"player-command"`
	RecorderCommand []string      `mapstructure:"recorder-command"`
}

type ResumeConfig struct {
	PDFToText string `mapstructure:"pdftotext"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr" validate:"hostname_port"`
	AllowOrigins   []string      `mapstructure:"allow-origins" validate:"omitempty,dive,url"`
	MaxUploadBytes int64         `mapstructure:"max-upload-bytes" validate:"gte=0"`
	SessionTTL     time.Duration `mapstructure:"session-ttl" validate:"gte=1m"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini.max-retries", 3)
	v.SetDefault("gemini.max-log-length", 200)
	v.SetDefault("speech.mode", ModeVoice)
	v.SetDefault("speech.answer-limit", session.DefaultAnswerLimit)
	v.SetDefault("speech.pace", speech.DefaultPace)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session-ttl", 2*time.Hour)
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		problems = append(problems, fmt.Sprintf("%s: value %v does not satisfy %s", fe.Namespace(), fe.Value(), rule))
	}

	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}

// Catalog returns the configured rounds or the built-in ones.
func (c *Config) Catalog() (*rounds.Catalog, error) {
	if len(c.Rounds) == 0 {
		return rounds.Default(), nil
	}

	catalog, err := rounds.New(c.Rounds)
	if err != nil {
		return nil, fmt.Errorf("rounds: %w", err)
	}

	return catalog, nil
}

func (c *Config) apiKey() (string, error) {
	key, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: c.Gemini.APIKey,
		File:  c.Gemini.APIKeyFile,
	})
	if err != nil {
		return "", fmt.Errorf("%w (set GEMINI_API_KEY, GEMINI_API_KEY_FILE or gemini.api-key-file)", err)
	}
	return key, nil
}
