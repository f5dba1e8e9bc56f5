package periphbus

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/mbalug7/go-si5326/pkg/si5326"
)

const chipAddr = 0x68

func TestReadWrite(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: chipAddr, W: []byte{0x04}, R: []byte{0x92}},
			{Addr: chipAddr, W: []byte{0x88, 0x40}},
		},
		DontPanic: true,
	}
	d := New(bus, chipAddr)

	v, err := d.ReadByte(4)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x92), v)
	require.NoError(t, d.WriteByte(136, 0x40))
	require.NoError(t, bus.Close())
	assert.NoError(t, d.Close())
}

func TestAddressTooWide(t *testing.T) {
	d := New(&i2ctest.Playback{DontPanic: true}, chipAddr)
	_, err := d.ReadByte(0x100)
	assert.Error(t, err)
}

func TestBusErrorIsWrapped(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	d := New(bus, chipAddr)
	_, err := d.ReadByte(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reg 0x00")
}

func TestAttachOverPlayback(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: chipAddr, W: []byte{0x00}, R: []byte{0x14}},
			{Addr: chipAddr, W: []byte{0x01}, R: []byte{0xe4}},
			{Addr: chipAddr, W: []byte{0x02}, R: []byte{0x42}},
			{Addr: chipAddr, W: []byte{0x03}, R: []byte{0x05}},
			{Addr: chipAddr, W: []byte{0x0c, 0xab}},
		},
		DontPanic: true,
	}
	b, err := si5326.Attach(New(bus, chipAddr), si5326.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	assert.Empty(t, b.Mismatches())
	require.NoError(t, b.Store("12 0xab"))
	require.NoError(t, b.Detach())
	assert.NoError(t, bus.Close())
}
