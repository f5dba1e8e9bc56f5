package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/mazen160/go-random"

	"github.com/mbalug7/go-si5326/pkg/hal"
)

// Server serves the line protocol to any number of channels. All channels share
// one broker, whose own locking serializes the bus transfers.
type Server struct {
	module hal.Module
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewServer(m hal.Module, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{module: m, logger: logger}
}

// Serve accepts connections until ctx is done or the listener fails.
// It waits for open connections to finish before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.wg.Wait()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			err := s.ServeConn(ctx, conn)
			if err != nil {
				s.logger.Warn("connection closed with error", "remote", conn.RemoteAddr(), "err", err)
			}
		}()
	}
}

// ServeConn answers request lines from rw until EOF or ctx is done. When rw is
// an io.Closer it is closed on cancellation to unblock the pending read.
func (s *Server) ServeConn(ctx context.Context, rw io.ReadWriter) error {
	id, err := random.String(8)
	if err != nil {
		return fmt.Errorf("failed to generate session id: %w", err)
	}
	logger := s.logger.With("session", id)
	logger.Debug("session opened")
	defer logger.Debug("session closed")

	if closer, ok := rw.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { closer.Close() })
		defer stop()
	}

	session := NewSession(s.module)
	scanner := bufio.NewScanner(rw)
	for scanner.Scan() {
		reply, ok := session.Handle(scanner.Text())
		if !ok {
			continue
		}
		logger.Debug("request", "line", scanner.Text(), "reply", reply)
		_, err := io.WriteString(rw, reply+"\n")
		if err != nil {
			return fmt.Errorf("failed to write reply: %w", err)
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	err = scanner.Err()
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	return nil
}
