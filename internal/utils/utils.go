package utils

import (
	"context"
	"strings"
	"time"
)

var sleep = time.Sleep

// WaitFor blocks for d or until ctx is done.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// ReadingTime estimates how long it takes to say text aloud at the given pace.
func ReadingTime(text string, wordsPerSecond float64) time.Duration {
	if wordsPerSecond <= 0 {
		return 0
	}

	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}

	return time.Duration(float64(words) / wordsPerSecond * float64(time.Second))
}
