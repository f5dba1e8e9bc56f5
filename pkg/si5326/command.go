package si5326

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mbalug7/go-si5326/pkg/hal"
)

const commentMarker = "#"

// CommandKind is the shape of one protocol line.
type CommandKind int

const (
	CmdComment CommandKind = iota
	CmdSelect
	CmdWrite
)

// Command is a parsed protocol line.
type Command struct {
	Kind  CommandKind
	Addr  hal.RegAddress
	Value uint8
}

func (c Command) String() string {
	switch c.Kind {
	case CmdSelect:
		return fmt.Sprintf("%d", c.Addr)
	case CmdWrite:
		return fmt.Sprintf("%d 0x%02x", c.Addr, c.Value)
	default:
		return commentMarker
	}
}

// ParseCommand parses "<addr>", "<addr> 0x<value>" or a "#" comment.
// The address is decimal, the value is hexadecimal and must fit in a byte.
func ParseCommand(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, commentMarker) {
		return Command{Kind: CmdComment}, nil
	}

	fields := strings.Fields(trimmed)
	switch len(fields) {
	case 1:
		addr, err := parseAddress(fields[0])
		if err != nil {
			return Command{}, &ParseError{Line: line, Reason: err.Error()}
		}
		return Command{Kind: CmdSelect, Addr: addr}, nil
	case 2:
		addr, err := parseAddress(fields[0])
		if err != nil {
			return Command{}, &ParseError{Line: line, Reason: err.Error()}
		}
		value, err := parseValue(fields[1])
		if err != nil {
			return Command{}, &ParseError{Line: line, Reason: err.Error()}
		}
		return Command{Kind: CmdWrite, Addr: addr, Value: value}, nil
	default:
		return Command{}, &ParseError{Line: line, Reason: fmt.Sprintf("expected 1 or 2 fields, got %d", len(fields))}
	}
}

func parseAddress(token string) (hal.RegAddress, error) {
	v, err := strconv.ParseUint(token, 10, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("address %q is not a decimal number", token)
	}
	return hal.RegAddress(v), nil
}

func parseValue(token string) (uint8, error) {
	if len(token) < 3 || !(strings.HasPrefix(token, "0x") || strings.HasPrefix(token, "0X")) {
		return 0, fmt.Errorf("value %q has no 0x prefix", token)
	}
	v, err := strconv.ParseUint(token[2:], 16, 8)
	if err != nil {
		return 0, fmt.Errorf("value %q is not a hex byte", token)
	}
	return uint8(v), nil
}

// Exec runs an already parsed command against the broker.
func (obj *Broker) Exec(cmd Command) error {
	switch cmd.Kind {
	case CmdComment:
		return nil
	case CmdSelect:
		obj.SetCursor(cmd.Addr)
		return nil
	case CmdWrite:
		return obj.Write(cmd.Addr, cmd.Value)
	default:
		return fmt.Errorf("unsupported command kind %d", cmd.Kind)
	}
}

// Store is the write side of the text hook: parse one line and run it.
// A malformed line changes nothing and touches no register.
func (obj *Broker) Store(line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		obj.logger.Error("failed to store register command", "line", line, "err", err)
		return err
	}
	return obj.Exec(cmd)
}

// Show is the read side of the text hook: read the selected register and
// format it as "<addr> <value>" in two-digit lowercase hex.
func (obj *Broker) Show() (string, error) {
	addr, value, err := obj.ReadAtCursor()
	if err != nil {
		return "", err
	}
	return hal.Register{Address: addr, Value: value}.String(), nil
}
