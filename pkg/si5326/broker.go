// Package si5326 exposes the raw register space of a Si5326 clock multiplier.
//
// The chip has many pages of register definitions and the vendor's setup tool
// produces a plain register/value map for a given frequency plan. This package
// makes no attempt to understand those registers: it offers a single text hook
// that reads or writes any register, and the generated map is played through it.
//
//	12 0xab   write 0xab to register 12
//	12        select register 12 for the next read
//	# ...     comment, ignored
package si5326

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mbalug7/go-si5326/pkg/hal"
)

// Broker owns the transport of one attached chip and the register cursor used
// by bare reads. All methods are safe for concurrent use.
type Broker struct {
	mu         sync.Mutex // held for the duration of one bus transaction
	hw         hal.Transport
	cursor     hal.RegAddress
	mismatches []ResetMismatch
	strict     bool
	logger     *slog.Logger
}

// Option configures a Broker at attach time.
type Option func(*Broker)

// WithLogger sets the logger used for attach diagnostics and command failures.
func WithLogger(logger *slog.Logger) Option {
	return func(obj *Broker) {
		if logger != nil {
			obj.logger = logger
		}
	}
}

// WithStrictProbe makes a reset value mismatch fail Attach with ErrResetMismatch.
func WithStrictProbe(strict bool) Option {
	return func(obj *Broker) {
		obj.strict = strict
	}
}

// Attach checks the transport capabilities, reads the reset fingerprint and
// returns a broker with the cursor at register 0.
func Attach(transport hal.Transport, opts ...Option) (*Broker, error) {
	if transport == nil {
		return nil, fmt.Errorf("failed to attach: %w", ErrUnsupportedTransport)
	}
	obj := &Broker{
		hw:     transport,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(obj)
	}

	if checker, ok := transport.(hal.FunctionalityChecker); ok {
		supported, err := checker.SupportsByteData()
		if err != nil {
			return nil, fmt.Errorf("failed to query transport functionality: %w: %w", ErrUnsupportedTransport, err)
		}
		if !supported {
			return nil, fmt.Errorf("failed to attach: %w", ErrUnsupportedTransport)
		}
	}

	err := obj.probe()
	if err != nil {
		return nil, fmt.Errorf("failed to probe si5326: %w", err)
	}
	return obj, nil
}

// Mismatches returns the reset value diagnostics collected by Attach.
func (obj *Broker) Mismatches() []ResetMismatch {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	out := make([]ResetMismatch, len(obj.mismatches))
	copy(out, obj.mismatches)
	return out
}

// Cursor returns the register a bare read applies to.
func (obj *Broker) Cursor() hal.RegAddress {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	return obj.cursor
}

// SetCursor selects the register for the next ReadAtCursor. The address is not validated.
func (obj *Broker) SetCursor(addr hal.RegAddress) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	obj.cursor = addr
}

// Write issues exactly one register write. The cursor is left alone.
func (obj *Broker) Write(addr hal.RegAddress, value uint8) error {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.hw == nil {
		return ErrDetached
	}
	err := obj.hw.WriteByte(addr, value)
	if err != nil {
		return &TransportError{Op: opWrite, Addr: addr, Err: err}
	}
	return nil
}

// ReadAtCursor issues exactly one register read at the cursor.
func (obj *Broker) ReadAtCursor() (hal.RegAddress, uint8, error) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	addr := obj.cursor
	value, err := obj.readLocked(addr)
	return addr, value, err
}

// dumpPrealloc bounds the slice preallocated by Dump, the range itself is caller supplied.
const dumpPrealloc = 256

// Dump reads registers from..to inclusive, one single-byte read each.
// The cursor is not moved. On failure the registers read so far are returned.
func (obj *Broker) Dump(from hal.RegAddress, to hal.RegAddress) ([]hal.Register, error) {
	if from > to {
		return nil, fmt.Errorf("invalid dump range %d..%d", from, to)
	}
	regs := make([]hal.Register, 0, min(to-from+1, dumpPrealloc))
	for addr := from; ; addr++ {
		obj.mu.Lock()
		value, err := obj.readLocked(addr)
		obj.mu.Unlock()
		if err != nil {
			return regs, err
		}
		regs = append(regs, hal.Register{Address: addr, Value: value})
		if addr == to {
			return regs, nil
		}
	}
}

func (obj *Broker) readLocked(addr hal.RegAddress) (uint8, error) {
	if obj.hw == nil {
		return 0, ErrDetached
	}
	value, err := obj.hw.ReadByte(addr)
	if err != nil {
		return 0, &TransportError{Op: opRead, Addr: addr, Err: err}
	}
	return value, nil
}

// Detach releases the transport. Closing is delegated to the transport when it
// implements io.Closer. Calling Detach twice is a no-op.
func (obj *Broker) Detach() error {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.hw == nil {
		return nil
	}
	hw := obj.hw
	obj.hw = nil
	if closer, ok := hw.(io.Closer); ok {
		err := closer.Close()
		if err != nil {
			return fmt.Errorf("failed to release transport: %w", err)
		}
	}
	obj.logger.Debug("si5326 detached")
	return nil
}

var _ hal.Module = (*Broker)(nil)
