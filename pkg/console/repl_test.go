package console

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipeConsole(t *testing.T) (*Console, *io.PipeWriter, func() uint8) {
	t.Helper()
	b, chip := newBroker(t)
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	c, err := newConsole(b, &readline.Config{
		Stdin:          pr,
		Stdout:         io.Discard,
		Stderr:         io.Discard,
		FuncIsTerminal: func() bool { return false },
	})
	require.NoError(t, err)
	return c, pw, func() uint8 { return chip.Peek(12) }
}

func TestConsoleRunQuit(t *testing.T) {
	c, pw, reg12 := pipeConsole(t)

	done := make(chan struct{})
	go func() {
		c.Run(context.Background())
		close(done)
	}()

	go io.WriteString(pw, "12 0xab\nquit\n")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit")
	}
	assert.Equal(t, uint8(0xab), reg12())
}

func TestConsoleRunCancel(t *testing.T) {
	c, _, _ := pipeConsole(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return while blocked in Readline after cancel")
	}
}
