package si5326

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbalug7/go-si5326/pkg/hal"
	"github.com/mbalug7/go-si5326/pkg/memory"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"#ignore me", Command{Kind: CmdComment}},
		{"# 12 0xab", Command{Kind: CmdComment}},
		{"  #indented", Command{Kind: CmdComment}},
		{"12", Command{Kind: CmdSelect, Addr: 12}},
		{"12\n", Command{Kind: CmdSelect, Addr: 12}},
		{"136", Command{Kind: CmdSelect, Addr: 136}},
		{"12 0xAB", Command{Kind: CmdWrite, Addr: 12, Value: 0xab}},
		{"0 0x14\n", Command{Kind: CmdWrite, Addr: 0, Value: 0x14}},
		{"4\t0x0", Command{Kind: CmdWrite, Addr: 4, Value: 0x00}},
		{"300 0XfF", Command{Kind: CmdWrite, Addr: 300, Value: 0xff}},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.line)
		require.NoError(t, err, "line %q", tt.line)
		assert.Equal(t, tt.want, got, "line %q", tt.line)
	}
}

func TestParseCommandRejects(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"not a command",
		"read",
		"-1",
		"0x12",
		"12 ab",
		"12 0x",
		"12 0x100",
		"12 0xzz",
		"12 0xab 13",
	}
	for _, line := range lines {
		_, err := ParseCommand(line)
		require.Error(t, err, "line %q", line)
		assert.ErrorIs(t, err, ErrParse, "line %q", line)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, line, parseErr.Line)
	}
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "12 0xab", Command{Kind: CmdWrite, Addr: 12, Value: 0xab}.String())
	assert.Equal(t, "12", Command{Kind: CmdSelect, Addr: 12}.String())
	assert.Equal(t, "#", Command{Kind: CmdComment}.String())
}

func TestStoreComment(t *testing.T) {
	chip := memory.NewChip()
	b := attachChip(t, chip)
	b.SetCursor(5)

	require.NoError(t, b.Store("#ignore me"))
	assert.Equal(t, hal.RegAddress(5), b.Cursor())
	assert.Empty(t, chip.Calls())
}

func TestStoreWrite(t *testing.T) {
	chip := memory.NewChip()
	b := attachChip(t, chip)

	require.NoError(t, b.Store("12 0xAB"))
	assert.Equal(t, []memory.Call{{Op: memory.OpWrite, Addr: 12, Value: 0xab}}, chip.Calls())
	assert.Equal(t, hal.RegAddress(0), b.Cursor())
}

func TestStoreSelect(t *testing.T) {
	chip := memory.NewChip()
	b := attachChip(t, chip)

	require.NoError(t, b.Store("12"))
	assert.Equal(t, hal.RegAddress(12), b.Cursor())
	assert.Empty(t, chip.Calls())
}

func TestStoreMalformed(t *testing.T) {
	chip := memory.NewChip()
	b := attachChip(t, chip)
	b.SetCursor(7)

	err := b.Store("not a command")
	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, hal.RegAddress(7), b.Cursor())
	assert.Empty(t, chip.Calls())
}

func TestShow(t *testing.T) {
	chip := memory.NewChip()
	chip.Set(136, 0x40)
	b := attachChip(t, chip)

	line, err := b.Show()
	require.NoError(t, err)
	assert.Equal(t, "00 14", line)

	require.NoError(t, b.Store("136"))
	line, err = b.Show()
	require.NoError(t, err)
	assert.Equal(t, "88 40", line)

	require.NoError(t, b.Store("3 0xA"))
	require.NoError(t, b.Store("3"))
	line, err = b.Show()
	require.NoError(t, err)
	assert.Equal(t, "03 0a", line)
}
