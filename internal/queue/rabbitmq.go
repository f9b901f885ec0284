package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

type RabbitMQ struct {
	url        string
	mu         sync.Mutex
	connection *amqp.Connection
	logger     *zap.Logger
}

// NewRabbitMQ dials the broker, retrying while it starts up.
func NewRabbitMQ(ctx context.Context, url string) (*RabbitMQ, error) {
	r := &RabbitMQ{
		url:    url,
		logger: zap.L().With(zap.String("component", "RabbitMQ")),
	}
	if err := r.connect(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RabbitMQ) connect(ctx context.Context) error {
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		connection, err := amqp.Dial(r.url)
		if err != nil {
			r.logger.Warn("broker not ready", zap.Error(err))
			return retry.RetryableError(fmt.Errorf("failed to connect to RabbitMQ: %w", err))
		}
		r.connection = connection
		return nil
	})
}

func (r *RabbitMQ) channel(ctx context.Context, queue string) (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connection == nil || r.connection.IsClosed() {
		if err := r.connect(ctx); err != nil {
			return nil, err
		}
	}

	channel, err := r.connection.Channel()
	if err != nil {
		return nil, err
	}

	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		channel.Close()
		return nil, err
	}
	return channel, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, queue string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	channel, err := r.channel(ctx, queue)
	if err != nil {
		return err
	}
	defer channel.Close()

	return channel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// Consume acks a delivery once the handler succeeds. A failed delivery is
// requeued once, a second failure drops it.
func (r *RabbitMQ) Consume(ctx context.Context, queue string, handler Handler, workers int) error {
	if workers < 1 {
		workers = 1
	}

	channel, err := r.channel(ctx, queue)
	if err != nil {
		return err
	}
	defer channel.Close()

	if err := channel.Qos(workers, 0, false); err != nil {
		return err
	}

	msgs, err := channel.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range msgs {
				if err := handler(ctx, d.Body); err != nil {
					requeue := !d.Redelivered
					r.logger.Error("job failed",
						zap.String("queue", queue),
						zap.String("message_id", d.MessageId),
						zap.Bool("requeue", requeue),
						zap.Error(err))
					d.Nack(false, requeue)
					continue
				}
				d.Ack(false)
			}
		}()
	}

	closed := channel.NotifyClose(make(chan *amqp.Error, 1))

	var consumeErr error
	select {
	case <-ctx.Done():
	case amqpErr := <-closed:
		if amqpErr != nil {
			consumeErr = fmt.Errorf("channel closed: %w", amqpErr)
		}
	}

	// closing the channel ends the deliveries range in every worker
	channel.Close()
	wg.Wait()
	return consumeErr
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.connection == nil {
		return nil
	}
	return r.connection.Close()
}
