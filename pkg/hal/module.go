package hal

// Module defines set of methods a text front end needs to drive a register broker
type Module interface {
	Store(line string) error
	Show() (string, error)
	Dump(from RegAddress, to RegAddress) ([]Register, error)
}
