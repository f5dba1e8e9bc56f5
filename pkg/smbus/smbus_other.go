//go:build !linux

package smbus

import (
	"errors"

	"github.com/mbalug7/go-si5326/pkg/hal"
)

var errUnsupported = errors.New("i2c-dev is only available on linux")

// Device is unavailable on this platform.
type Device struct{}

func Open(bus int, addr uint16) (*Device, error) {
	return nil, errUnsupported
}

func (obj *Device) SupportsByteData() (bool, error)                  { return false, errUnsupported }
func (obj *Device) ReadByte(addr hal.RegAddress) (uint8, error)      { return 0, errUnsupported }
func (obj *Device) WriteByte(addr hal.RegAddress, value uint8) error { return errUnsupported }
func (obj *Device) Close() error                                     { return nil }
