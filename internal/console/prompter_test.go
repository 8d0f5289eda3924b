package console

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskReturnsTrimmedLine(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  latte  \n"), &out, time.Second)

	answer, err := p.Ask("Coffee? ")
	require.NoError(t, err)
	assert.Equal(t, "latte", answer)
	assert.Contains(t, out.String(), "Coffee? ")
}

func TestAskTimesOutWhenNothingArrives(t *testing.T) {
	reader, _ := io.Pipe()
	p := NewPrompter(reader, io.Discard, 20*time.Millisecond)

	_, err := p.Ask("Coffee? ")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestAskReportsClosedInput(t *testing.T) {
	p := NewPrompter(strings.NewReader("one\n"), io.Discard, time.Second)

	answer, err := p.Ask("? ")
	require.NoError(t, err)
	assert.Equal(t, "one", answer)

	_, err = p.Ask("? ")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLateLineServesNextPrompt(t *testing.T) {
	reader, writer := io.Pipe()
	p := NewPrompter(reader, io.Discard, 30*time.Millisecond)

	_, err := p.Ask("? ")
	require.ErrorIs(t, err, ErrTimeout)

	go func() {
		writer.Write([]byte("late\n"))
	}()

	answer, err := p.Ask("? ")
	require.NoError(t, err)
	assert.Equal(t, "late", answer)
}
