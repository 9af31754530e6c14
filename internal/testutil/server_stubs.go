package testutil

import (
	"context"
	"net/http"

	"github.com/preston-bernstein/cricket-scoring-service/internal/checkpoint"
)

// StubCheckpointer implements the server's Checkpointer for tests.
type StubCheckpointer struct {
	StartCalls int
	StopCalls  int
	RunCalls   int
	Err        error
	StatusVal  checkpoint.Status
}

func (c *StubCheckpointer) Start(ctx context.Context) {
	_ = ctx
	c.StartCalls++
}

func (c *StubCheckpointer) Stop(ctx context.Context) error {
	_ = ctx
	c.StopCalls++
	return c.Err
}

func (c *StubCheckpointer) RunOnce() error {
	c.RunCalls++
	return c.Err
}

func (c *StubCheckpointer) Status() checkpoint.Status {
	return c.StatusVal
}

// StubHTTPServer implements httpServer for tests.
type StubHTTPServer struct {
	AddrVal       string
	HandlerVal    http.Handler
	ListenCalls   int
	ShutdownCalls int
	ListenErr     error
	ShutdownErr   error
}

func (s *StubHTTPServer) ListenAndServe() error {
	s.ListenCalls++
	return s.ListenErr
}

func (s *StubHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	s.ShutdownCalls++
	return s.ShutdownErr
}

func (s *StubHTTPServer) Addr() string {
	return s.AddrVal
}

func (s *StubHTTPServer) Handler() http.Handler {
	return s.HandlerVal
}

// BlockingHTTPServer allows simulating a shutdown that waits on an unblock channel.
type BlockingHTTPServer struct {
	AddrVal       string
	HandlerVal    http.Handler
	ShutdownCalls int
	Unblock       chan struct{}
}

func (b *BlockingHTTPServer) ListenAndServe() error {
	return nil
}

func (b *BlockingHTTPServer) Shutdown(ctx context.Context) error {
	b.ShutdownCalls++
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.Unblock:
		return nil
	}
}

func (b *BlockingHTTPServer) Addr() string {
	return b.AddrVal
}

func (b *BlockingHTTPServer) Handler() http.Handler {
	return b.HandlerVal
}
