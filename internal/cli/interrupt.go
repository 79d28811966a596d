package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a long-running operation on SIGINT/SIGTERM and
// tells the user what happened to the work done so far.
type InterruptHandler struct {
	w      io.Writer
	cancel context.CancelFunc
	// signals overrides OS signal delivery; tests send on it directly.
	signals     chan os.Signal
	operation   string
	hint        string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a handler that reports to w (stdout if nil).
func NewInterruptHandler(w io.Writer) *InterruptHandler {
	if w == nil {
		w = os.Stdout
	}
	return &InterruptHandler{w: w}
}

// HandleInterrupts returns a context canceled on the first interrupt or when
// parent ends. operation names the work ("Import"); hint, if set, explains
// what happens to partial results.
func (h *InterruptHandler) HandleInterrupts(parent context.Context, operation, hint string) context.Context {
	ctx, cancel := context.WithCancel(parent)
	h.cancel = cancel
	h.operation = operation
	h.hint = hint

	signals := h.signals
	if signals == nil {
		signals = make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-ctx.Done()
			signal.Stop(signals)
		}()
	}

	go func() {
		select {
		case <-signals:
			h.interrupt()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.interrupted {
		return
	}
	h.interrupted = true

	msg := "\n\n" + FormatWarning(h.operation+" interrupted!")
	if h.hint != "" {
		msg += "\n" + FormatInfo(h.hint)
	}
	if _, err := fmt.Fprintln(h.w, msg); err != nil {
		slog.Warn("Failed to write interrupt message", "error", err)
	}
}

// Stop cancels the handler's context and releases the signal registration.
func (h *InterruptHandler) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
}

// WasInterrupted reports whether a signal was received.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
