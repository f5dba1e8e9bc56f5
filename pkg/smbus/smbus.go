// Package smbus talks to a device through the Linux i2c-dev interface using
// SMBus byte-data transfers, the same transactions a kernel driver issues with
// i2c_smbus_read_byte_data and i2c_smbus_write_byte_data.
package smbus

import "fmt"

// DevicePath returns the i2c-dev node of a bus number.
func DevicePath(bus int) string {
	return fmt.Sprintf("/dev/i2c-%d", bus)
}
