package server

import (
	"bufio"
	"io"
	"strings"
	"testing"
	"time"
)

// sseReader incrementally parses event/data pairs off a live stream.
type sseReader struct {
	scanner *bufio.Scanner
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{scanner: bufio.NewScanner(r)}
}

// next returns the next event name and data payload, skipping comments and
// blank separators.
func (r *sseReader) next(t *testing.T) (event, data string) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r.scanner.Scan() {
			line := r.scanner.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for SSE event")
	}
	return event, data
}
