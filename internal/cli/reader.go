package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when the context ends before a line arrives.
var ErrInputCancelled = errors.New("input canceled")

type line struct {
	err  error
	text string
}

// NonBlockingReader reads lines from an input that may never produce one,
// such as a terminal, without ignoring context cancellation. A single
// goroutine owns the underlying reader; it starts on the first read and
// exits once the input is exhausted.
type NonBlockingReader struct {
	src   *bufio.Reader
	lines chan line
	start sync.Once
}

// NewNonBlockingReader wraps r.
func NewNonBlockingReader(r io.Reader) *NonBlockingReader {
	if r == nil {
		panic("reader cannot be nil")
	}
	return &NonBlockingReader{
		src:   bufio.NewReader(r),
		lines: make(chan line),
	}
}

func (r *NonBlockingReader) pump() {
	defer close(r.lines)
	for {
		text, err := r.src.ReadString('\n')
		if text != "" || err == nil {
			r.lines <- line{text: text}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.lines <- line{err: err}
			}
			return
		}
	}
}

// ReadLine returns the next line with surrounding whitespace removed. A final
// line without a newline is returned as is; after that io.EOF is returned.
func (r *NonBlockingReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	r.start.Do(func() { go r.pump() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case l, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

// Confirm asks a yes/no question. Only "y" and "yes" count as yes; end of
// input counts as no.
func (r *NonBlockingReader) Confirm(ctx context.Context, w io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprint(w, FormatPrompt(question+" [y/N]")); err != nil {
		return false, err
	}

	answer, err := r.ReadLine(ctx)
	switch {
	case errors.Is(err, io.EOF):
		return false, nil
	case err != nil:
		return false, err
	}

	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
