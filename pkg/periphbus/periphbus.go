// Package periphbus adapts a periph.io I2C bus to the register transport.
// A byte read is a combined write-register/read-one-byte transaction, a byte
// write sends the register followed by the value.
package periphbus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/mbalug7/go-si5326/pkg/hal"
)

// Device is one slave address on a periph.io bus.
type Device struct {
	dev    *i2c.Dev
	closer i2c.BusCloser
}

// Open initializes the host drivers and opens the named bus ("" picks the first one).
func Open(busName string, addr uint16) (*Device, error) {
	_, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize periph host drivers: %w", err)
	}
	b, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open i2c bus %q: %w", busName, err)
	}
	return &Device{dev: &i2c.Dev{Bus: b, Addr: addr}, closer: b}, nil
}

// New wraps an already opened bus. The bus is not closed by Close.
func New(bus i2c.Bus, addr uint16) *Device {
	return &Device{dev: &i2c.Dev{Bus: bus, Addr: addr}}
}

func (obj *Device) String() string {
	return obj.dev.String()
}

func (obj *Device) ReadByte(addr hal.RegAddress) (uint8, error) {
	reg, err := addr.ToByte()
	if err != nil {
		return 0, err
	}
	r := make([]byte, 1)
	err = obj.dev.Tx([]byte{reg}, r)
	if err != nil {
		return 0, fmt.Errorf("i2c read %s reg 0x%02x: %w", obj.dev, reg, err)
	}
	return r[0], nil
}

func (obj *Device) WriteByte(addr hal.RegAddress, value uint8) error {
	reg, err := addr.ToByte()
	if err != nil {
		return err
	}
	err = obj.dev.Tx([]byte{reg, value}, nil)
	if err != nil {
		return fmt.Errorf("i2c write %s reg 0x%02x: %w", obj.dev, reg, err)
	}
	return nil
}

// Close closes the bus when Open created it.
func (obj *Device) Close() error {
	if obj.closer == nil {
		return nil
	}
	err := obj.closer.Close()
	obj.closer = nil
	if err != nil {
		return fmt.Errorf("failed to close i2c bus: %w", err)
	}
	return nil
}

var _ hal.Transport = (*Device)(nil)
