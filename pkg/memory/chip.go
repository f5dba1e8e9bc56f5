// Package memory provides an in-memory register file that behaves like a
// freshly reset Si5326 on the bus. It records every transfer.
package memory

import (
	"fmt"
	"sync"

	"github.com/mbalug7/go-si5326/pkg/hal"
)

// ResetValues are the power-on contents of registers 0..3.
var ResetValues = []uint8{0x14, 0xe4, 0x42, 0x05}

const (
	OpRead  = "read"
	OpWrite = "write"
)

// Call is one recorded bus transfer.
type Call struct {
	Op    string
	Addr  hal.RegAddress
	Value uint8
}

// Chip is a simulated register file. Unset registers read as zero.
type Chip struct {
	mu        sync.Mutex
	registers map[hal.RegAddress]uint8
	readErrs  map[hal.RegAddress]error
	writeErrs map[hal.RegAddress]error
	calls     []Call
	byteData  bool
	closed    bool
}

// NewChip returns a chip holding its reset values.
func NewChip() *Chip {
	c := &Chip{
		registers: make(map[hal.RegAddress]uint8),
		readErrs:  make(map[hal.RegAddress]error),
		writeErrs: make(map[hal.RegAddress]error),
		byteData:  true,
	}
	for i, v := range ResetValues {
		c.registers[hal.RegAddress(i)] = v
	}
	return c
}

func (c *Chip) ReadByte(addr hal.RegAddress) (uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: OpRead, Addr: addr})
	if c.closed {
		return 0, fmt.Errorf("chip closed")
	}
	if err, ok := c.readErrs[addr]; ok {
		return 0, err
	}
	return c.registers[addr], nil
}

func (c *Chip) WriteByte(addr hal.RegAddress, value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: OpWrite, Addr: addr, Value: value})
	if c.closed {
		return fmt.Errorf("chip closed")
	}
	if err, ok := c.writeErrs[addr]; ok {
		return err
	}
	c.registers[addr] = value
	return nil
}

func (c *Chip) SupportsByteData() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byteData, nil
}

func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *Chip) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Set stores a register value without recording a transfer.
func (c *Chip) Set(addr hal.RegAddress, value uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registers[addr] = value
}

// Peek returns a register value without recording a transfer.
func (c *Chip) Peek(addr hal.RegAddress) uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registers[addr]
}

// FailRead makes every read of addr return err.
func (c *Chip) FailRead(addr hal.RegAddress, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErrs[addr] = err
}

// FailWrite makes every write of addr return err.
func (c *Chip) FailWrite(addr hal.RegAddress, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErrs[addr] = err
}

// SetByteDataSupport changes what SupportsByteData reports.
func (c *Chip) SetByteDataSupport(supported bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byteData = supported
}

// Calls returns a copy of the recorded transfers.
func (c *Chip) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// ResetCalls forgets the recorded transfers.
func (c *Chip) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}
