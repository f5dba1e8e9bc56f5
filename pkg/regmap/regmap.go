// Package regmap reads register maps produced by the vendor's frequency plan
// tool and plays them out to the chip, one register write per entry.
//
// Two line formats are accepted, mixed freely:
//
//	12 0xab     the broker's own protocol line
//	12, ABh     the vendor tool's register map export
//
// Blank lines and lines starting with "#" are skipped.
package regmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mbalug7/go-si5326/pkg/hal"
	"github.com/mbalug7/go-si5326/pkg/si5326"
)

var vendorLine = regexp.MustCompile(`^(\d+)\s*,\s*([0-9A-Fa-f]{1,2})[hH]$`)

// Entry is one register write and the line it came from.
type Entry struct {
	Line int
	hal.Register
}

// ParseFile parses the register map at path.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open register map: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a register map. Select-only lines are rejected, a map must set a value on every entry.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		reg, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("register map line %d: %w", lineNo, err)
		}
		entries = append(entries, Entry{Line: lineNo, Register: reg})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read register map: %w", err)
	}
	return entries, nil
}

func parseLine(line string) (hal.Register, error) {
	if m := vendorLine.FindStringSubmatch(line); m != nil {
		addr, err := strconv.ParseUint(m[1], 10, strconv.IntSize)
		if err != nil {
			return hal.Register{}, fmt.Errorf("invalid address %q: %w", m[1], err)
		}
		value, err := strconv.ParseUint(m[2], 16, 8)
		if err != nil {
			return hal.Register{}, fmt.Errorf("invalid value %q: %w", m[2], err)
		}
		return hal.Register{Address: hal.RegAddress(addr), Value: uint8(value)}, nil
	}

	cmd, err := si5326.ParseCommand(line)
	if err != nil {
		return hal.Register{}, err
	}
	if cmd.Kind != si5326.CmdWrite {
		return hal.Register{}, fmt.Errorf("%q does not set a register value", line)
	}
	return hal.Register{Address: cmd.Addr, Value: cmd.Value}, nil
}
