// Package hasher runs bcrypt work on a fixed pool of goroutines so that
// password hashing never runs on the goroutine serving a request.
package hasher

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ArtyomSF99/url-shortener/internal/metrics"
)

var ErrClosed = errors.New("hasher: pool closed")

type Pool struct {
	cost int
	jobs chan func()
	quit chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewPool starts workers goroutines hashing with the given bcrypt cost.
func NewPool(cost, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	p := &Pool{
		cost: cost,
		jobs: make(chan func()),
		quit: make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			job()
		case <-p.quit:
			return
		}
	}
}

// submit hands fn to a worker and waits for it to finish.
func (p *Pool) submit(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-p.quit:
		return ErrClosed
	default:
	}

	done := make(chan struct{})
	job := func() {
		defer close(done)
		fn()
	}

	select {
	case p.jobs <- job:
	case <-p.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Hash returns a salted bcrypt hash of password.
func (p *Pool) Hash(ctx context.Context, password string) (string, error) {
	var (
		hash []byte
		err  error
	)
	start := time.Now()
	if submitErr := p.submit(ctx, func() {
		hash, err = bcrypt.GenerateFromPassword([]byte(password), p.cost)
	}); submitErr != nil {
		return "", submitErr
	}
	metrics.HashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())

	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. A malformed hash is an error,
// a mismatch is not.
func (p *Pool) Compare(ctx context.Context, password, hash string) (bool, error) {
	var err error
	start := time.Now()
	if submitErr := p.submit(ctx, func() {
		err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	}); submitErr != nil {
		return false, submitErr
	}
	metrics.HashDuration.WithLabelValues("compare").Observe(time.Since(start).Seconds())

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close stops the workers after in-flight jobs finish.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}
