// Package notify plays the new-order alert sound.
package notify

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// Notifier raises a best-effort alert for a new or modified order.
// Errors are informational: the engine logs them and continues.
type Notifier interface {
	Alert(ctx context.Context) error
}

// Sound plays a local mp3 synchronously: Alert blocks until playback
// finishes, matching the loop's fully sequential model.
type Sound struct {
	path string

	initOnce sync.Once
	initErr  error
}

// NewSound creates a notifier for the mp3 at path.
func NewSound(path string) *Sound {
	return &Sound{path: path}
}

// Alert decodes and plays the configured sound. Returns early, with the
// playback abandoned, if ctx is cancelled mid-play.
func (s *Sound) Alert(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open alert sound: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode alert sound %s: %w", s.path, err)
	}
	defer streamer.Close()

	// The speaker is initialized once with the first file's sample rate;
	// the alert asset never changes at runtime.
	s.initOnce.Do(func() {
		s.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if s.initErr != nil {
		return fmt.Errorf("init speaker: %w", s.initErr)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
