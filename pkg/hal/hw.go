package hal

// Transport is the byte register capability of one device on an I2C bus.
// Every call is a single synchronous bus transaction. Timeouts and cancellation
// are whatever the underlying adapter provides.
type Transport interface {
	ReadByte(addr RegAddress) (uint8, error)
	WriteByte(addr RegAddress, value uint8) error
}

// FunctionalityChecker is implemented by transports that can tell whether the
// adapter supports single byte-data read/write transfers.
type FunctionalityChecker interface {
	SupportsByteData() (bool, error)
}
