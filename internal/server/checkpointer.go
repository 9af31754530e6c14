package server

import (
	"context"

	"github.com/preston-bernstein/cricket-scoring-service/internal/checkpoint"
)

// Checkpointer defines the checkpoint loop behavior needed by the server.
type Checkpointer interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() checkpoint.Status
	RunOnce() error
}
