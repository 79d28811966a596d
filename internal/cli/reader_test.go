package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonBlockingReader_ReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single line", input: "yes\n", want: []string{"yes"}},
		{name: "whitespace trimmed", input: "  Netflix  \n", want: []string{"Netflix"}},
		{name: "empty line", input: "\n", want: []string{""}},
		{name: "several lines", input: "one\ntwo\nthree\n", want: []string{"one", "two", "three"}},
		{name: "no trailing newline", input: "a\nb", want: []string{"a", "b"}},
		{name: "empty input", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			r := NewNonBlockingReader(strings.NewReader(tt.input))

			var got []string
			for {
				l, err := r.ReadLine(ctx)
				if errors.Is(err, io.EOF) {
					break
				}
				require.NoError(t, err)
				got = append(got, l)
			}
			assert.Equal(t, tt.want, got)

			_, err := r.ReadLine(ctx)
			assert.ErrorIs(t, err, io.EOF, "EOF is sticky")
		})
	}
}

func TestNonBlockingReader_Cancellation(t *testing.T) {
	t.Run("already cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewNonBlockingReader(strings.NewReader("y\n")).ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})

	t.Run("input never arrives", func(t *testing.T) {
		pr, pw := io.Pipe()
		t.Cleanup(func() { _ = pw.Close() })

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := NewNonBlockingReader(pr).ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})

	t.Run("later line still delivered", func(t *testing.T) {
		pr, pw := io.Pipe()
		t.Cleanup(func() { _ = pw.Close() })
		r := NewNonBlockingReader(pr)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := r.ReadLine(ctx)
		require.ErrorIs(t, err, ErrInputCancelled)

		go func() { _, _ = pw.Write([]byte("late\n")) }()
		got, err := r.ReadLine(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "late", got)
	})
}

func TestNonBlockingReader_ReadError(t *testing.T) {
	pr, pw := io.Pipe()
	_ = pw.CloseWithError(errors.New("tty gone"))

	_, err := NewNonBlockingReader(pr).ReadLine(context.Background())
	assert.EqualError(t, err, "tty gone")
}

func TestNonBlockingReader_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "y", input: "y\n", want: true},
		{name: "upper yes", input: "YES\n", want: true},
		{name: "n", input: "n\n", want: false},
		{name: "blank", input: "\n", want: false},
		{name: "eof", input: "", want: false},
		{name: "other", input: "maybe\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			r := NewNonBlockingReader(strings.NewReader(tt.input))

			got, err := r.Confirm(context.Background(), &out, "Delete NETFLIX?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Delete NETFLIX? [y/N]")
		})
	}
}
