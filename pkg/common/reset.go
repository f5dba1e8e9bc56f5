package common

import (
	"fmt"
	"time"

	"github.com/warthog618/gpiod"
)

// outputLine is the part of *gpiod.Line the reset handler drives.
type outputLine interface {
	SetValue(value int) error
	Close() error
}

// ResetLine drives the active-low RST pin of the chip so the registers are back
// at their power-on values before the fingerprint is read.
type ResetLine struct {
	chip   *gpiod.Chip
	line   outputLine
	pulse  time.Duration
	settle time.Duration
	sleep  func(time.Duration)
}

// NewResetLine requests the line as an output held high (chip running).
func NewResetLine(gpioChip string, offset int, pulse time.Duration, settle time.Duration) (*ResetLine, error) {
	c, err := gpiod.NewChip(gpioChip, gpiod.WithConsumer("si5326"))
	if err != nil {
		return nil, fmt.Errorf("failed to create GPIO chip: %w", err)
	}
	line, err := c.RequestLine(offset, gpiod.AsOutput(1))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to request RST GPIO line %d: %w", offset, err)
	}
	obj := newResetLine(line, pulse, settle)
	obj.chip = c
	return obj, nil
}

func newResetLine(line outputLine, pulse time.Duration, settle time.Duration) *ResetLine {
	return &ResetLine{
		line:   line,
		pulse:  pulse,
		settle: settle,
		sleep:  time.Sleep,
	}
}

// Pulse holds RST low for the pulse width, releases it and waits for the chip to come back.
func (obj *ResetLine) Pulse() error {
	err := obj.line.SetValue(0)
	if err != nil {
		return fmt.Errorf("failed to assert RST line: %w", err)
	}
	obj.sleep(obj.pulse)
	err = obj.line.SetValue(1)
	if err != nil {
		return fmt.Errorf("failed to release RST line: %w", err)
	}
	obj.sleep(obj.settle)
	return nil
}

func (obj *ResetLine) Close() (err error) {
	err = obj.line.Close()
	if err != nil {
		return fmt.Errorf("failed to close RST line: %w", err)
	}
	if obj.chip != nil {
		err = obj.chip.Close()
		if err != nil {
			return fmt.Errorf("failed to close GPIO chip: %w", err)
		}
	}
	return nil
}
