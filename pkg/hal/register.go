package hal

import "fmt"

// RegAddress is a register address on the device. The hardware defines its own
// valid range, nothing in this package checks it.
type RegAddress uint

// ToByte returns the address as it is sent on the bus.
// Addresses above 0xFF can't be encoded in a single byte-data transfer.
func (a RegAddress) ToByte() (byte, error) {
	if a > 0xFF {
		return 0, fmt.Errorf("register address %d does not fit in one byte", a)
	}
	return byte(a), nil
}

// Register is one address/value pair as it travels through the line protocol.
type Register struct {
	Address RegAddress
	Value   uint8
}

func (r Register) String() string {
	return fmt.Sprintf("%02x %02x", uint(r.Address), r.Value)
}
