// Package console serves the register line protocol over text channels: an
// interactive readline prompt, a unix socket or a serial tty.
//
// Every request line gets exactly one reply:
//
//	12 0xab   -> ok                write
//	12        -> ok                select
//	# note    -> ok                comment
//	read | ?  -> 0c ab             read at the selected register
//	dump 0 3  -> 00 14 ... 03 05   space separated dump
//	anything else -> error: <reason>
package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mbalug7/go-si5326/pkg/hal"
)

const (
	replyOK     = "ok"
	errorPrefix = "error: "
)

// DumpLast is the highest register dumped when no range is given.
const DumpLast hal.RegAddress = 143

// Session turns request lines into broker calls.
type Session struct {
	module hal.Module
}

func NewSession(m hal.Module) *Session {
	return &Session{module: m}
}

// Handle runs one request line. Blank lines produce no reply.
func (s *Session) Handle(line string) (string, bool) {
	input := strings.TrimSpace(line)
	if input == "" {
		return "", false
	}
	fields := strings.Fields(input)
	switch strings.ToLower(fields[0]) {
	case "read", "?":
		if len(fields) != 1 {
			return errorPrefix + "read takes no arguments", true
		}
		out, err := s.module.Show()
		if err != nil {
			return errorPrefix + err.Error(), true
		}
		return out, true
	case "dump":
		return s.dump(fields[1:]), true
	}

	err := s.module.Store(input)
	if err != nil {
		return errorPrefix + err.Error(), true
	}
	return replyOK, true
}

func (s *Session) dump(args []string) string {
	from, to, err := ParseRange(args)
	if err != nil {
		return errorPrefix + err.Error()
	}
	regs, err := s.module.Dump(from, to)
	if err != nil {
		return errorPrefix + err.Error()
	}
	parts := make([]string, 0, len(regs))
	for _, r := range regs {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " ")
}

// ParseRange parses "[from [to]]" decimal register bounds, defaulting to 0..DumpLast.
func ParseRange(args []string) (hal.RegAddress, hal.RegAddress, error) {
	from, to := hal.RegAddress(0), DumpLast
	if len(args) > 2 {
		return 0, 0, fmt.Errorf("dump takes at most 2 arguments")
	}
	if len(args) > 0 {
		v, err := strconv.ParseUint(args[0], 10, strconv.IntSize)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid start register %q", args[0])
		}
		from = hal.RegAddress(v)
		if len(args) == 1 && from > to {
			to = from
		}
	}
	if len(args) > 1 {
		v, err := strconv.ParseUint(args[1], 10, strconv.IntSize)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid end register %q", args[1])
		}
		to = hal.RegAddress(v)
	}
	if from > to {
		return 0, 0, fmt.Errorf("invalid range %d..%d", from, to)
	}
	return from, to, nil
}
