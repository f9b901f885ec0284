package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArtyomSF99/url-shortener/internal/entities"
	"github.com/ArtyomSF99/url-shortener/internal/metrics"
	"github.com/ArtyomSF99/url-shortener/internal/repository"
)

// RegistrationProcessor creates the accounts queued by AuthService.Register.
type RegistrationProcessor struct {
	users  repository.UserRepository
	hasher PasswordHasher
	logger *zap.Logger
}

func NewRegistrationProcessor(users repository.UserRepository, hasher PasswordHasher) *RegistrationProcessor {
	return &RegistrationProcessor{
		users:  users,
		hasher: hasher,
		logger: zap.L().With(zap.String("component", "RegistrationWorker")),
	}
}

// Handle processes one registration message. Returning nil acknowledges
// the message, so jobs that can never succeed are logged and dropped,
// while store and hashing failures are returned for redelivery.
func (p *RegistrationProcessor) Handle(ctx context.Context, body []byte) error {
	var job RegistrationJob
	if err := json.Unmarshal(body, &job); err != nil {
		metrics.RegistrationJobsTotal.WithLabelValues("malformed").Inc()
		p.logger.Error("dropping malformed registration job", zap.Error(err))
		return nil
	}

	email := NormalizeEmail(job.Email)
	if email == "" || job.Password == "" {
		metrics.RegistrationJobsTotal.WithLabelValues("malformed").Inc()
		p.logger.Error("dropping incomplete registration job", zap.String("email", email))
		return nil
	}

	_, err := p.users.FindByEmail(ctx, email)
	if err == nil {
		metrics.RegistrationJobsTotal.WithLabelValues("duplicate").Inc()
		p.logger.Warn("user already exists", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		metrics.RegistrationJobsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := p.hasher.Hash(ctx, job.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		metrics.RegistrationJobsTotal.WithLabelValues("malformed").Inc()
		p.logger.Error("dropping registration job with unhashable password", zap.String("email", email), zap.Error(err))
		return nil
	}
	if err != nil {
		metrics.RegistrationJobsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{Email: email, PasswordHash: hash}
	if err := p.users.Create(ctx, user); err != nil {
		// a duplicate delivery of the same job got there first
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.RegistrationJobsTotal.WithLabelValues("duplicate").Inc()
			p.logger.Warn("user already exists", zap.String("email", email))
			return nil
		}
		metrics.RegistrationJobsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to create user: %w", err)
	}

	metrics.RegistrationJobsTotal.WithLabelValues("created").Inc()
	p.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("email", email))
	return nil
}
