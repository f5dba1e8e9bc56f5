package si5326

import (
	"github.com/mbalug7/go-si5326/pkg/hal"
)

// ResetFingerprint holds the documented power-on contents of registers 0..3.
var ResetFingerprint = [...]uint8{0x14, 0xe4, 0x42, 0x05}

// probe reads the fingerprint registers in order and stops on the first bus error.
func (obj *Broker) probe() error {
	var mismatches []ResetMismatch
	for i, expected := range ResetFingerprint {
		addr := hal.RegAddress(i)
		value, err := obj.hw.ReadByte(addr)
		if err != nil {
			obj.logger.Error("failed to read reset register", "addr", addr, "err", err)
			return &TransportError{Op: opRead, Addr: addr, Err: err}
		}
		if value != expected {
			m := ResetMismatch{Addr: addr, Expected: expected, Actual: value}
			obj.logger.Warn(m.String(), "addr", addr)
			mismatches = append(mismatches, m)
		}
	}
	obj.mismatches = mismatches

	if len(mismatches) > 0 {
		if obj.strict {
			return &ProbeError{Mismatches: mismatches}
		}
		obj.logger.Warn("si5326 attached with registers off their reset values", "mismatches", len(mismatches))
		return nil
	}
	obj.logger.Info("si5326 found with reset values in first registers", "count", len(ResetFingerprint))
	return nil
}
