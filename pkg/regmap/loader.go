package regmap

import (
	"fmt"
	"log/slog"

	"github.com/mbalug7/go-si5326/pkg/hal"
)

// Writer is the part of the broker a Loader needs.
type Writer interface {
	Write(addr hal.RegAddress, value uint8) error
}

// Loader object that is used to stage a register map and write it to the chip
type Loader struct {
	target  Writer
	entries []Entry
	skip    map[hal.RegAddress]bool
	dryRun  bool
	logger  *slog.Logger
}

// NewLoader constructs Loader
func NewLoader(target Writer) *Loader {
	return &Loader{
		target: target,
		skip:   make(map[hal.RegAddress]bool),
		logger: slog.Default(),
	}
}

// Entries stages map entries, appended after anything already staged
func (obj *Loader) Entries(entries []Entry) *Loader {
	obj.entries = append(obj.entries, entries...)
	return obj
}

// Skip leaves the given registers out when applying
func (obj *Loader) Skip(addrs ...hal.RegAddress) *Loader {
	for _, a := range addrs {
		obj.skip[a] = true
	}
	return obj
}

// DryRun logs every write instead of issuing it
func (obj *Loader) DryRun(dryRun bool) *Loader {
	obj.dryRun = dryRun
	return obj
}

// Logger sets the logger
func (obj *Loader) Logger(logger *slog.Logger) *Loader {
	if logger != nil {
		obj.logger = logger
	}
	return obj
}

// Apply writes the staged entries in order and stops at the first failure.
// It returns how many registers were written.
func (obj *Loader) Apply() (int, error) {
	written := 0
	for _, e := range obj.entries {
		if obj.skip[e.Address] {
			obj.logger.Debug("skipping register", "line", e.Line, "addr", e.Address)
			continue
		}
		if obj.dryRun {
			obj.logger.Info("dry run write", "line", e.Line, "addr", e.Address, "value", fmt.Sprintf("0x%02x", e.Value))
			continue
		}
		err := obj.target.Write(e.Address, e.Value)
		if err != nil {
			return written, fmt.Errorf("failed to apply register map line %d: %w", e.Line, err)
		}
		written++
	}
	obj.logger.Info("register map applied", "written", written, "staged", len(obj.entries))
	return written, nil
}
