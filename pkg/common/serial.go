// Package common holds the hardware helpers around the chip that are not the
// register bus itself: the reset pin and the serial console channel.
package common

import (
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// OpenSerialChannel opens a tty that carries the line protocol, e.g. a USB
// gadget serial port exposed to a remote host. Reads block until data arrives.
func OpenSerialChannel(ttyName string, baud int) (io.ReadWriteCloser, error) {
	config := &serial.Config{
		Name: ttyName,
		Baud: baud,
		Size: 8,
	}
	port, err := serial.OpenPort(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port, err: %w", err)
	}
	return port, nil
}
