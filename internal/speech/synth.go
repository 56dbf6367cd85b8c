package speech

import (
	"context"
	"fmt"
)

type synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Player plays raw audio.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// SynthSpeaker speaks by synthesizing audio and handing it to a Player.
type SynthSpeaker struct {
	synth  synthesizer
	player Player
}

func NewSynthSpeaker(synth synthesizer, player Player) *SynthSpeaker {
	return &SynthSpeaker{synth: synth, player: player}
}

func (s *SynthSpeaker) Speak(ctx context.Context, text string) error {
	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}

	if err := s.player.Play(ctx, audio); err != nil {
		return fmt.Errorf("play speech: %w", err)
	}

	return nil
}
