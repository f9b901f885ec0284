package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/ArtyomSF99/url-shortener/internal/metrics"
	"github.com/ArtyomSF99/url-shortener/internal/repository"
)

const (
	// URL-safe alphabet, 64 symbols
	slugAlphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	GeneratedSlugLen    = 7
	maxGenerateAttempts = 3
)

// SlugAllocator picks a slug for a new URL. The store's unique constraint
// remains the final arbiter, Allocate only avoids known collisions.
type SlugAllocator struct {
	repo     repository.URLRepository
	generate func() (string, error)
	logger   *zap.Logger
}

func NewSlugAllocator(repo repository.URLRepository) *SlugAllocator {
	return &SlugAllocator{
		repo:     repo,
		generate: generateSlug,
		logger:   zap.L().With(zap.String("component", "SlugAllocator")),
	}
}

// generateSlug draws GeneratedSlugLen symbols from slugAlphabet using crypto/rand
func generateSlug() (string, error) {
	result := make([]byte, GeneratedSlugLen)
	alphabetLen := big.NewInt(int64(len(slugAlphabet)))

	for i := range result {
		index, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random slug: %w", err)
		}
		result[i] = slugAlphabet[index.Int64()]
	}

	return string(result), nil
}

func (a *SlugAllocator) taken(ctx context.Context, slug string) (bool, error) {
	_, err := a.repo.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Allocate returns custom when it is free, otherwise a fresh random slug.
// A taken custom slug fails immediately with ErrSlugConflict, random slugs
// are retried up to three times.
func (a *SlugAllocator) Allocate(ctx context.Context, custom string) (string, error) {
	if custom != "" {
		taken, err := a.taken(ctx, custom)
		if err != nil {
			return "", fmt.Errorf("failed to check slug availability: %w", err)
		}
		if taken {
			return "", ErrSlugConflict
		}
		return custom, nil
	}

	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		slug, err := a.generate()
		if err != nil {
			return "", err
		}

		taken, err := a.taken(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug availability: %w", err)
		}
		if !taken {
			return slug, nil
		}

		metrics.SlugCollisionsTotal.Inc()
		a.logger.Warn("generated slug collided", zap.String("slug", slug), zap.Int("attempt", attempt))
	}

	return "", ErrSlugConflict
}
