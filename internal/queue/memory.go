package queue

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

type delivery struct {
	body    []byte
	attempt int
}

// Memory is an in-process Queue used when no broker is configured and in tests.
// A failed job is redelivered until it has been attempted maxAttempts times.
type Memory struct {
	mu          sync.Mutex
	queues      map[string]chan delivery
	buffer      int
	maxAttempts int
	done        chan struct{}
	closeOnce   sync.Once
	logger      *zap.Logger
}

func NewMemory(buffer, maxAttempts int) *Memory {
	if buffer < 1 {
		buffer = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Memory{
		queues:      make(map[string]chan delivery),
		buffer:      buffer,
		maxAttempts: maxAttempts,
		done:        make(chan struct{}),
		logger:      zap.L().With(zap.String("component", "MemoryQueue")),
	}
}

func (m *Memory) queue(name string) chan delivery {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.queues[name]
	if !ok {
		ch = make(chan delivery, m.buffer)
		m.queues[name] = ch
	}
	return ch
}

func (m *Memory) Publish(ctx context.Context, queue string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case <-m.done:
		return ErrClosed
	default:
	}

	select {
	case m.queue(queue) <- delivery{body: body, attempt: 1}:
		return nil
	case <-m.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Consume(ctx context.Context, queue string, handler Handler, workers int) error {
	if workers < 1 {
		workers = 1
	}
	ch := m.queue(queue)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case d := <-ch:
					m.handle(ctx, ch, queue, d, handler)
				}
			}
		}()
	}

	wg.Wait()
	return nil
}

func (m *Memory) handle(ctx context.Context, ch chan delivery, queue string, d delivery, handler Handler) {
	err := handler(ctx, d.body)
	if err == nil {
		return
	}

	if d.attempt >= m.maxAttempts {
		m.logger.Error("job dropped", zap.String("queue", queue), zap.Int("attempt", d.attempt), zap.Error(err))
		return
	}

	m.logger.Warn("job failed, redelivering", zap.String("queue", queue), zap.Int("attempt", d.attempt), zap.Error(err))
	d.attempt++
	go func() {
		select {
		case ch <- d:
		case <-m.done:
		}
	}()
}

func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}
