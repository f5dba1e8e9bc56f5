package si5326

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mbalug7/go-si5326/pkg/hal"
)

var (
	// ErrTransport matches every failed bus operation.
	ErrTransport = errors.New("transport failure")
	// ErrUnsupportedTransport is returned by Attach when the adapter can't do byte-data transfers.
	ErrUnsupportedTransport = errors.New("transport does not support byte data read/write")
	// ErrParse matches every malformed command line.
	ErrParse = errors.New("malformed register command")
	// ErrResetMismatch is only returned by Attach when strict probing is enabled.
	ErrResetMismatch = errors.New("register not at reset value")
	// ErrDetached is returned by bus operations after Detach.
	ErrDetached = errors.New("broker is detached")
)

const (
	opRead  = "read"
	opWrite = "write"
)

// TransportError is a failed read or write of a single register.
type TransportError struct {
	Op   string
	Addr hal.RegAddress
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to %s register %d: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// ParseError is a command line that is neither a comment, a select nor a write.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("failed to parse register command %q", e.Line)
	}
	return fmt.Sprintf("failed to parse register command %q: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// ResetMismatch is a register that did not hold its power-on value at attach time.
type ResetMismatch struct {
	Addr     hal.RegAddress
	Expected uint8
	Actual   uint8
}

func (m ResetMismatch) String() string {
	return fmt.Sprintf("register at [%d] %02x not reset value %02x", m.Addr, m.Actual, m.Expected)
}

// ProbeError carries the mismatches that failed a strict probe.
type ProbeError struct {
	Mismatches []ResetMismatch
}

func (e *ProbeError) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, m.String())
	}
	return fmt.Sprintf("%s: %s", ErrResetMismatch, strings.Join(parts, "; "))
}

func (e *ProbeError) Unwrap() error {
	return ErrResetMismatch
}
