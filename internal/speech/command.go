package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	placeholderSeconds = "{{SECONDS}}"
	placeholderFile    = "{{FILE}}"
	recordGrace        = 5 * time.Second
)

var (
	// DefaultPlayerCommand plays 24kHz 16-bit mono PCM from stdin.
	DefaultPlayerCommand = []string{"aplay", "-q", "-t", "raw", "-f", "S16_LE", "-r", "24000", "-c", "1"}
	// DefaultRecorderCommand records a 16kHz mono WAV file.
	DefaultRecorderCommand = []string{"arecord", "-q", "-t", "wav", "-f", "S16_LE", "-r", "16000", "-c", "1", "-d", placeholderSeconds, placeholderFile}
)

// CommandPlayer pipes audio to an external program.
type CommandPlayer struct {
	Command []string
}

func (p *CommandPlayer) Play(ctx context.Context, audio []byte) error {
	if len(p.Command) == 0 {
		return errors.New("player command is not configured")
	}

	cmd := exec.CommandContext(ctx, p.Command[0], p.Command[1:]...)
	cmd.Stdin = bytes.NewReader(audio)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("run %s: %w: %s", p.Command[0], err, strings.TrimSpace(string(out)))
	}

	return nil
}

// CommandRecorder records audio with an external program writing a WAV file.
// {{SECONDS}} and {{FILE}} in the command are replaced per recording.
type CommandRecorder struct {
	Command []string
	TempDir string
}

// Record captures at most maxDuration of audio. The temporary file is always removed.
func (r *CommandRecorder) Record(ctx context.Context, maxDuration time.Duration) ([]byte, error) {
	if len(r.Command) == 0 {
		return nil, errors.New("recorder command is not configured")
	}

	file, err := os.CreateTemp(r.TempDir, "answer-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create recording file: %w", err)
	}
	path := file.Name()
	file.Close()
	defer os.Remove(path)

	seconds := int(maxDuration.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	args := make([]string, 0, len(r.Command))
	for _, arg := range r.Command {
		arg = strings.ReplaceAll(arg, placeholderSeconds, strconv.Itoa(seconds))
		arg = strings.ReplaceAll(arg, placeholderFile, path)
		args = append(args, arg)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(seconds)*time.Second+recordGrace)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}

	return data, nil
}
