package console

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, rw *bufio.ReadWriter, line string) string {
	t.Helper()
	_, err := rw.WriteString(line + "\n")
	require.NoError(t, err)
	require.NoError(t, rw.Flush())
	reply, err := rw.ReadString('\n')
	require.NoError(t, err)
	return reply[:len(reply)-1]
}

func TestServeConn(t *testing.T) {
	b, chip := newBroker(t)
	srv := NewServer(b, quietLogger())

	client, server := net.Pipe()
	done := make(chan error, 1)
	go func() { done <- srv.ServeConn(context.Background(), server) }()

	rw := bufio.NewReadWriter(bufio.NewReader(client), bufio.NewWriter(client))
	assert.Equal(t, "ok", roundTrip(t, rw, "20 0x3c"))
	assert.Equal(t, "ok", roundTrip(t, rw, "20"))
	assert.Equal(t, "14 3c", roundTrip(t, rw, "read"))
	assert.Contains(t, roundTrip(t, rw, "20 0x3c junk"), "error: ")
	assert.Equal(t, uint8(0x3c), chip.Peek(20))

	require.NoError(t, client.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ServeConn did not return after client close")
	}
}

func TestServeConnCancel(t *testing.T) {
	b, _ := newBroker(t)
	srv := NewServer(b, quietLogger())

	client, server := net.Pipe()
	defer client.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeConn(ctx, server) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ServeConn did not return after cancel")
	}
}

func TestServe(t *testing.T) {
	b, _ := newBroker(t)
	srv := NewServer(b, quietLogger())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	assert.Equal(t, "00 14", roundTrip(t, rw, "?"))
	assert.Equal(t, "ok", roundTrip(t, rw, "3"))
	assert.Equal(t, "03 05", roundTrip(t, rw, "?"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	conn.Close()
}
