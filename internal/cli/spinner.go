package cli

import (
	"context"
	"fmt"
	"io"
	"time"
)

const (
	spinnerSteps = 10
	spinnerDelay = 200 * time.Millisecond
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Spin draws a rotating bar after msg for the given number of steps, then prints a
// completion line. It stops early when ctx is canceled.
func Spin(ctx context.Context, w io.Writer, msg string, steps int, delay time.Duration) error {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for i := 0; i < steps; i++ {
		fmt.Fprintf(w, "\r%s %s", msg, spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return ctx.Err()
		case <-ticker.C:
		}
	}
	fmt.Fprintf(w, "\r%s done!       \n", msg)
	return nil
}
