package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	// ErrTimeout means the customer walked away; the session is abandoned
	// and restarted fresh.
	ErrTimeout = errors.New("input timed out")
	// ErrClosed means the input stream ended (interrupt or EOF).
	ErrClosed = errors.New("input closed")
)

type line struct {
	text string
	err  error
}

// Prompter reads stdin lines on a dedicated goroutine so every prompt can
// race the inactivity timeout. A line that arrives after its prompt timed
// out is delivered to the next prompt; there is no way to cancel a blocked
// read on a terminal.
type Prompter struct {
	lines   chan line
	out     io.Writer
	timeout time.Duration
}

func NewPrompter(in io.Reader, out io.Writer, timeout time.Duration) *Prompter {
	p := &Prompter{
		lines:   make(chan line),
		out:     out,
		timeout: timeout,
	}
	go p.readLoop(in)
	return p
}

func (p *Prompter) readLoop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		p.lines <- line{text: scanner.Text()}
	}
	err := scanner.Err()
	if err == nil {
		err = ErrClosed
	}
	p.lines <- line{err: err}
	close(p.lines)
}

// Ask prints the prompt and waits for one line, trimmed, subject to the
// inactivity timeout.
func (p *Prompter) Ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case l, ok := <-p.lines:
		if !ok || l.err != nil {
			return "", ErrClosed
		}
		return strings.TrimSpace(l.text), nil
	case <-timer.C:
		return "", ErrTimeout
	}
}

// Printf writes UI text to the terminal.
func (p *Prompter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}
