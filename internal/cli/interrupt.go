package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels work on SIGINT or SIGTERM and tells the user
// what was kept.
type InterruptHandler struct {
	writer       io.Writer
	interrupted  bool
	showProgress bool
	mu           sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{writer: writer}
}

// HandleInterrupts returns a context canceled on SIGINT or SIGTERM, and a
// stop function that releases the signal handler.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, showProgress bool) (context.Context, func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, stop := h.watch(ctx, sigChan, showProgress)
	return ctx, func() {
		signal.Stop(sigChan)
		stop()
	}
}

func (h *InterruptHandler) watch(ctx context.Context, sigChan <-chan os.Signal, showProgress bool) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	h.showProgress = showProgress

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		h.mu.Lock()
		if !h.interrupted {
			h.interrupted = true
			h.showInterruptMessage()
		}
		h.mu.Unlock()
		cancel()
	}()

	return ctx, cancel
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning("Analysis interrupted!")

	if h.showProgress {
		msg += "\n" + FormatInfo("Finished analyses are kept in your history: lensline history list")
	}
	msg += "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		// Best effort - we're shutting down anyway
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
