// Package cli holds small helpers shared by the interactive commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reader reads lines from an input stream without blocking past context
// cancellation. Reads run on a background goroutine; a cancelled context
// abandons the pending read and returns ctx.Err().
type Reader struct {
	scanner *bufio.Scanner
	lines   chan readResult
}

type readResult struct {
	line string
	err  error
}

// NewReader creates a Reader over r. Pass os.Stdin for interactive use.
func NewReader(r io.Reader) *Reader {
	nr := &Reader{
		scanner: bufio.NewScanner(r),
		lines:   make(chan readResult),
	}
	go nr.loop()
	return nr
}

func (r *Reader) loop() {
	for r.scanner.Scan() {
		r.lines <- readResult{line: r.scanner.Text()}
	}
	err := r.scanner.Err()
	if err == nil {
		err = io.EOF
	}
	r.lines <- readResult{err: err}
	close(r.lines)
}

// ReadLine returns the next line of input, trimmed of surrounding
// whitespace, or ctx.Err() if the context is cancelled first.
func (r *Reader) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}

// Prompt prints msg to stderr and reads one line of input.
func (r *Reader) Prompt(ctx context.Context, msg string) (string, error) {
	fmt.Fprint(os.Stderr, msg)
	return r.ReadLine(ctx)
}
