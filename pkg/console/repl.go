package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/mbalug7/go-si5326/pkg/hal"
)

// Console handles interactive mode for si5326ctl.
type Console struct {
	session *Session
	rl      *readline.Instance
}

// NewConsole creates a readline prompt bound to the broker.
func NewConsole(m hal.Module) (*Console, error) {
	return newConsole(m, &readline.Config{})
}

func newConsole(m hal.Module, cfg *readline.Config) (*Console, error) {
	cfg.Prompt = "si5326> "
	cfg.InterruptPrompt = "^C"
	cfg.EOFPrompt = "exit"
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{session: NewSession(m), rl: rl}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop. It returns on quit, EOF or when
// ctx is done, the pending Readline is unblocked by closing the instance.
func (c *Console) Run(ctx context.Context) {
	closeOnce := sync.OnceFunc(func() { c.rl.Close() })
	defer closeOnce()
	stop := context.AfterFunc(ctx, closeOnce)
	defer stop()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return
		}

		switch strings.TrimSpace(line) {
		case "help", "h":
			c.printHelp()
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return
		}

		reply, ok := c.session.Handle(line)
		if ok {
			fmt.Fprintln(c.rl.Stdout(), reply)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Si5326 register console:
  <addr> 0x<val>    - Write val to register addr (decimal addr, hex val)
  <addr>            - Select register addr for read
  read | ?          - Read the selected register
  dump [from] [to]  - Read a register range (default 0..143)
  # ...             - Comment, ignored
  help              - Show this help
  quit              - Exit`)
}
