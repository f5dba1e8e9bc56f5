//go:build linux

package smbus

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/mbalug7/go-si5326/pkg/hal"
)

// ioctl requests and flags from linux/i2c-dev.h and linux/i2c.h
const (
	i2cSlave = 0x0703
	i2cFuncs = 0x0705
	i2cSMBus = 0x0720

	smbusWrite    = 0
	smbusRead     = 1
	smbusByteData = 2

	funcSMBusReadByteData  = 0x00080000
	funcSMBusWriteByteData = 0x00100000

	// union i2c_smbus_data: I2C_SMBUS_BLOCK_MAX + 2
	smbusDataSize = 34
)

// ioctlData mirrors struct i2c_smbus_ioctl_data.
type ioctlData struct {
	readWrite uint8
	command   uint8
	size      uint32
	data      *[smbusDataSize]byte
}

// Device is one slave address on an i2c-dev bus.
type Device struct {
	mu   sync.Mutex // serializes transfers on the shared fd
	fd   int
	path string
	addr uint16
}

// Open opens /dev/i2c-<bus> and binds it to the slave address.
func Open(bus int, addr uint16) (*Device, error) {
	path := DevicePath(bus)
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s, ensure that i2c-dev kernel module is loaded: %w", path, err)
	}
	err = unix.IoctlSetInt(fd, i2cSlave, int(addr))
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to select address 0x%02x on %s: %w", addr, path, err)
	}
	return &Device{fd: fd, path: path, addr: addr}, nil
}

func (obj *Device) String() string {
	return fmt.Sprintf("%s@0x%02x", obj.path, obj.addr)
}

// SupportsByteData asks the adapter for its functionality mask.
func (obj *Device) SupportsByteData() (bool, error) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	var funcs uintptr // unsigned long
	err := ioctlPtr(obj.fd, i2cFuncs, unsafe.Pointer(&funcs))
	if err != nil {
		return false, fmt.Errorf("failed to read adapter functionality of %s: %w", obj.path, err)
	}
	const need = funcSMBusReadByteData | funcSMBusWriteByteData
	return funcs&need == need, nil
}

func (obj *Device) ReadByte(addr hal.RegAddress) (uint8, error) {
	reg, err := addr.ToByte()
	if err != nil {
		return 0, err
	}
	var data [smbusDataSize]byte
	err = obj.transfer(smbusRead, reg, &data)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (obj *Device) WriteByte(addr hal.RegAddress, value uint8) error {
	reg, err := addr.ToByte()
	if err != nil {
		return err
	}
	var data [smbusDataSize]byte
	data[0] = value
	return obj.transfer(smbusWrite, reg, &data)
}

func (obj *Device) transfer(readWrite uint8, reg byte, data *[smbusDataSize]byte) error {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	args := ioctlData{
		readWrite: readWrite,
		command:   reg,
		size:      smbusByteData,
		data:      data,
	}
	err := ioctlPtr(obj.fd, i2cSMBus, unsafe.Pointer(&args))
	if err != nil {
		return fmt.Errorf("smbus transfer on %s reg 0x%02x: %w", obj, reg, err)
	}
	return nil
}

// Close releases the bus file descriptor.
func (obj *Device) Close() error {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if obj.fd < 0 {
		return nil
	}
	err := unix.Close(obj.fd)
	obj.fd = -1
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", obj.path, err)
	}
	return nil
}

func ioctlPtr(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

var (
	_ hal.Transport            = (*Device)(nil)
	_ hal.FunctionalityChecker = (*Device)(nil)
)
