// Package utils holds small helpers shared by the CLI entrypoint.
package utils

import (
	"io"
	"sync"
)

// DeferredWriter buffers writes until Flush is called. The TUI owns the
// terminal while it runs, so log output is held here and replayed on exit.
//
// Each Write is stored as its own entry so structured writers such as
// zerolog.ConsoleWriter still receive one event per call when flushed.
type DeferredWriter struct {
	mu      sync.Mutex
	entries [][]byte
}

// Write records a copy of p.
func (w *DeferredWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry := make([]byte, len(p))
	copy(entry, p)
	w.entries = append(w.entries, entry)
	return len(p), nil
}

// Len returns the number of buffered writes.
func (w *DeferredWriter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Flush replays all buffered writes to out in order and clears the buffer.
func (w *DeferredWriter) Flush(out io.Writer) error {
	w.mu.Lock()
	entries := w.entries
	w.entries = nil
	w.mu.Unlock()

	for _, e := range entries {
		if _, err := out.Write(e); err != nil {
			return err
		}
	}
	return nil
}
