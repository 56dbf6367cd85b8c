package speech

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubSpeaker struct {
	err    error
	spoken []string
}

func (s *stubSpeaker) Speak(_ context.Context, text string) error {
	s.spoken = append(s.spoken, text)
	return s.err
}

type stubSynth struct {
	audio []byte
	err   error
}

func (s stubSynth) Synthesize(context.Context, string) ([]byte, error) {
	return s.audio, s.err
}

type stubPlayer struct {
	played []byte
	err    error
}

func (p *stubPlayer) Play(_ context.Context, audio []byte) error {
	p.played = audio
	return p.err
}

type stubRecorder struct {
	audio   []byte
	err     error
	maxSeen time.Duration
}

func (r *stubRecorder) Record(_ context.Context, limit time.Duration) ([]byte, error) {
	r.maxSeen = limit
	return r.audio, r.err
}

type stubTranscriber struct {
	text  string
	err   error
	calls int
}

func (t *stubTranscriber) Transcribe(context.Context, []byte) (string, error) {
	t.calls++
	return t.text, t.err
}

func TestAnnouncerUsesSpeaker(t *testing.T) {
	speaker := &stubSpeaker{}
	var out bytes.Buffer

	NewAnnouncer(speaker, &out, 0, nil).Announce(context.Background(), "Tell me about yourself.")

	assert.Equal(t, []string{"Tell me about yourself."}, speaker.spoken)
	assert.Empty(t, out.String())
}

func TestAnnouncerFallsBackToText(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	speaker := &stubSpeaker{err: errors.New("no audio device")}
	var out bytes.Buffer

	NewAnnouncer(speaker, &out, 0, zap.New(core)).Announce(context.Background(), "Next question.")

	assert.Equal(t, "Interviewer: Next question.\n", out.String())
	require.Equal(t, 1, logs.FilterMessage("speech output failed, printing text instead").Len())
}

func TestAnnouncerWithoutSpeaker(t *testing.T) {
	var out bytes.Buffer

	NewAnnouncer(nil, &out, 0, nil).Announce(context.Background(), "Welcome.")

	assert.Equal(t, "Interviewer: Welcome.\n", out.String())
}

func TestAnnouncerPauseStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	start := time.Now()
	NewAnnouncer(nil, &out, 0.001, nil).Announce(ctx, "a long pause would follow this")

	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, out.String(), "Interviewer:")
}

func TestSynthSpeaker(t *testing.T) {
	player := &stubPlayer{}
	speaker := NewSynthSpeaker(stubSynth{audio: []byte{1, 2}}, player)

	require.NoError(t, speaker.Speak(context.Background(), "hello"))
	assert.Equal(t, []byte{1, 2}, player.played)

	speaker = NewSynthSpeaker(stubSynth{err: errors.New("quota")}, player)
	err := speaker.Speak(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesize speech")

	speaker = NewSynthSpeaker(stubSynth{audio: []byte{1}}, &stubPlayer{err: errors.New("busy")})
	err = speaker.Speak(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "play speech")
}

func TestVoiceListener(t *testing.T) {
	t.Run("transcribes recording", func(t *testing.T) {
		rec := &stubRecorder{audio: []byte("RIFF")}
		tr := &stubTranscriber{text: "  I led a team of five.  "}

		text, err := NewVoiceListener(rec, tr).Capture(context.Background(), 90*time.Second)

		require.NoError(t, err)
		assert.Equal(t, "I led a team of five.", text)
		assert.Equal(t, 90*time.Second, rec.maxSeen)
	})

	t.Run("empty recording skips transcription", func(t *testing.T) {
		tr := &stubTranscriber{text: "unused"}

		text, err := NewVoiceListener(&stubRecorder{}, tr).Capture(context.Background(), time.Second)

		require.NoError(t, err)
		assert.Empty(t, text)
		assert.Zero(t, tr.calls)
	})

	t.Run("recorder failure", func(t *testing.T) {
		_, err := NewVoiceListener(&stubRecorder{err: errors.New("no mic")}, &stubTranscriber{}).
			Capture(context.Background(), time.Second)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "record answer")
	})

	t.Run("transcriber failure", func(t *testing.T) {
		_, err := NewVoiceListener(&stubRecorder{audio: []byte("x")}, &stubTranscriber{err: errors.New("api down")}).
			Capture(context.Background(), time.Second)

		require.Error(t, err)
	})
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
}

func TestCommandPlayer(t *testing.T) {
	requireShell(t)

	target := filepath.Join(t.TempDir(), "played.raw")
	player := &CommandPlayer{Command: []string{"sh", "-c", `cat > "$0"`, target}}

	require.NoError(t, player.Play(context.Background(), []byte("pcm")))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "pcm", string(data))

	err = (&CommandPlayer{Command: []string{"sh", "-c", "echo broken >&2; exit 3"}}).Play(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	assert.Error(t, (&CommandPlayer{}).Play(context.Background(), nil))
}

func TestCommandRecorder(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	rec := &CommandRecorder{
		Command: []string{"sh", "-c", `printf "RIFF-$0" > "$1"`, placeholderSeconds, placeholderFile},
		TempDir: dir,
	}

	data, err := rec.Record(context.Background(), 1500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "RIFF-2", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "recording file must be removed")

	rec.Command = []string{"sh", "-c", "exit 1"}
	_, err = rec.Record(context.Background(), time.Second)
	require.Error(t, err)

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
