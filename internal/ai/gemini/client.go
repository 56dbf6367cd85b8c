package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel           = "gemini-2.5-flash"
	defaultSpeechModel     = "gemini-2.5-flash-preview-tts"
	defaultVoice           = "Kore"
	defaultMaxLogLength    = 200
	baseRetryDelay         = time.Second
	maxRetryDelay          = 30 * time.Second
	silenceMarker          = "[silence]"
	transcribeInstruction  = "Transcribe the spoken answer in this recording verbatim. Reply with the transcription only. If there is no intelligible speech, reply with " + silenceMarker + "."
	extractTextInstruction = "Extract all readable text from this document verbatim, keeping the reading order. Reply with the text only, without commentary or markdown."
)

var (
	sleep = time.Sleep

	retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*(ms|s|sec|secs|seconds?)?`)
)

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures a Generator.
type Config struct {
	APIKey string
	// Model serves text completion, transcription and document extraction.
	Model string
	// SpeechModel serves text-to-speech.
	SpeechModel  string
	Voice        string
	MaxRetries   int
	MaxLogLength int
}

// Generator wraps the Google GenAI client for completion, speech and document requests.
type Generator struct {
	models      contentModels
	model       string
	speechModel string
	voice       string
	maxRetries  int
	maxLogLen   int
	logger      *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	g := &Generator{
		models:      client.Models,
		model:       firstNonEmpty(cfg.Model, defaultModel),
		speechModel: firstNonEmpty(cfg.SpeechModel, defaultSpeechModel),
		voice:       firstNonEmpty(cfg.Voice, defaultVoice),
		maxRetries:  cfg.MaxRetries,
		maxLogLen:   cfg.MaxLogLength,
	}
	if g.maxLogLen <= 0 {
		g.maxLogLen = defaultMaxLogLength
	}
	g.logger = logger.WithProvider(log, "gemini", g.model)

	return g, nil
}

// Complete sends the prompt to Gemini and returns the textual response.
func (g *Generator) Complete(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(min(opts.MaxTokens, math.MaxInt32))
	}
	if opts.Temperature > 0 {
		config.Temperature = float32Ptr(float32(opts.Temperature))
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
		zap.Int("max_tokens", opts.MaxTokens),
		zap.Float64("temperature", opts.Temperature),
	)

	resp, err := g.generate(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}

	output, err := responseText(resp)
	if err != nil {
		return "", err
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	return output, nil
}

// Synthesize converts text to speech. The result is raw 16-bit little-endian mono PCM at 24kHz.
func (g *Generator) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if g == nil || g.models == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	config := &genai.GenerateContentConfig{
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	}
	config.ResponseModalities = append(config.ResponseModalities, "AUDIO")

	resp, err := g.generate(ctx, g.speechModel, genai.Text(text), config)
	if err != nil {
		return nil, err
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, errors.New("gemini api returned no audio")
}

// Transcribe converts a WAV recording to text. An empty string means no speech was detected.
func (g *Generator) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if len(wav) == 0 {
		return "", nil
	}

	text, err := g.describeInline(ctx, transcribeInstruction, wav, "audio/wav")
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	if strings.EqualFold(strings.TrimSpace(text), silenceMarker) {
		return "", nil
	}

	return text, nil
}

// ExtractDocumentText reads the text of a scanned document.
func (g *Generator) ExtractDocumentText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("document must not be empty")
	}

	text, err := g.describeInline(ctx, extractTextInstruction, data, mimeType)
	if err != nil {
		return "", fmt.Errorf("extract document text: %w", err)
	}

	return text, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *Generator) describeInline(ctx context.Context, instruction string, data []byte, mimeType string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: instruction},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		},
	}}

	g.logger.Debug("gemini inline content request",
		zap.String("mime_type", mimeType),
		zap.Int("payload_bytes", len(data)),
	)

	resp, err := g.generate(ctx, g.model, contents, nil)
	if err != nil {
		return "", err
	}

	return responseText(resp)
}

func (g *Generator) generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	attempts := g.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := g.models.GenerateContent(ctx, model, contents, config)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == attempts {
			break
		}

		g.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		sleep(delay)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("generate content: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("generate content: %w", lastErr)
}

// retryDelay reports whether err is temporary and how long to wait before the next attempt.
// Requests the API asks to postpone beyond maxRetryDelay are not retried.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
	default:
		return 0, false
	}

	backoff := baseRetryDelay << (attempt - 1)
	if backoff > maxRetryDelay || backoff <= 0 {
		backoff = maxRetryDelay
	}

	requested, ok := parseRetryAfter(apiErr.Message)
	if !ok {
		return backoff, true
	}
	if requested > maxRetryDelay {
		return 0, false
	}

	return max(requested, backoff), true
}

func parseRetryAfter(message string) (time.Duration, bool) {
	match := retryAfterPattern.FindStringSubmatch(message)
	if match == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}

	unit := time.Second
	if strings.EqualFold(match[2], "ms") {
		unit = time.Millisecond
	}

	return time.Duration(value * float64(unit)), true
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini api returned empty response")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func firstNonEmpty(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}

func float32Ptr(v float32) *float32 {
	return &v
}
