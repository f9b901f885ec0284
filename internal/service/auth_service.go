package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ArtyomSF99/url-shortener/internal/entities"
	"github.com/ArtyomSF99/url-shortener/internal/jwt"
	"github.com/ArtyomSF99/url-shortener/internal/models"
	"github.com/ArtyomSF99/url-shortener/internal/repository"
)

const RegistrationQueuedMessage = "Registration has been queued and will be processed shortly."

// PasswordHasher is satisfied by *hasher.Pool.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, password, hash string) (bool, error)
}

// JobPublisher is the publishing half of queue.Queue.
type JobPublisher interface {
	Publish(ctx context.Context, queue string, message any) error
}

// RegistrationJob is the message carried by the registration queue.
type RegistrationJob struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
	SignIn(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context, userID string) (*entities.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     PasswordHasher
	publisher  JobPublisher
	queueName  string
	jwtService *jwt.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher, publisher JobPublisher, queueName string, jwtService *jwt.JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		publisher:  publisher,
		queueName:  queueName,
		jwtService: jwtService,
		logger:     zap.L().With(zap.String("component", "AuthService")),
	}
}

// Register enqueues the account creation and returns at once. Whether the
// email is already taken is only decided by the worker.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	job := RegistrationJob{
		Email:    NormalizeEmail(req.Email),
		Password: req.Password,
	}

	if err := s.publisher.Publish(ctx, s.queueName, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue registration: %w", err)
	}

	s.logger.Info("registration queued", zap.String("email", job.Email))
	return &models.RegisterResponse{Message: RegistrationQueuedMessage}, nil
}

// SignIn checks the password and returns a signed access token
func (s *authService) SignIn(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := NormalizeEmail(req.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Info("sign-in for unknown email", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.hasher.Compare(ctx, req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.logger.Info("sign-in with wrong password", zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{AccessToken: token}, nil
}

// Profile returns the user behind an access token
func (s *authService) Profile(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
