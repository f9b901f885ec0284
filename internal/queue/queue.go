// Package queue delivers JSON jobs to background workers with
// at-least-once semantics.
package queue

import (
	"context"
	"errors"
)

// ErrClosed is returned when publishing on a closed queue.
var ErrClosed = errors.New("queue: closed")

// Handler processes one job body. A non-nil error asks for redelivery.
type Handler func(ctx context.Context, body []byte) error

type Queue interface {
	Publish(ctx context.Context, queue string, message any) error
	// Consume runs workers on queue until ctx is cancelled.
	Consume(ctx context.Context, queue string, handler Handler, workers int) error
	Close() error
}
