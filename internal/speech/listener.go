package speech

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type recorder interface {
	Record(ctx context.Context, maxDuration time.Duration) ([]byte, error)
}

type transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// VoiceListener records an answer and transcribes it.
type VoiceListener struct {
	recorder    recorder
	transcriber transcriber
}

func NewVoiceListener(rec recorder, tr transcriber) *VoiceListener {
	return &VoiceListener{recorder: rec, transcriber: tr}
}

func (l *VoiceListener) Capture(ctx context.Context, maxDuration time.Duration) (string, error) {
	audio, err := l.recorder.Record(ctx, maxDuration)
	if err != nil {
		return "", fmt.Errorf("record answer: %w", err)
	}

	if len(audio) == 0 {
		return "", nil
	}

	text, err := l.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}
