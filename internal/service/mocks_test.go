package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ArtyomSF99/url-shortener/internal/entities"
	"github.com/ArtyomSF99/url-shortener/internal/repository"
)

// MockURLRepository is a mock implementation of URLRepository
type MockURLRepository struct {
	mock.Mock
}

func (m *MockURLRepository) Create(ctx context.Context, url *entities.URL) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockURLRepository) FindBySlug(ctx context.Context, slug string) (*entities.URL, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.URL), args.Error(1)
}

func (m *MockURLRepository) FindByID(ctx context.Context, id string) (*entities.URL, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.URL), args.Error(1)
}

func (m *MockURLRepository) IncrementVisits(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func (m *MockURLRepository) UpdateSlug(ctx context.Context, id, slug string) error {
	args := m.Called(ctx, id, slug)
	return args.Error(0)
}

func (m *MockURLRepository) ListByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]*entities.URL, int, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.URL), args.Int(1), args.Error(2)
}

func (m *MockURLRepository) ListAll(ctx context.Context) ([]*entities.URL, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.URL), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

// MockPublisher records published jobs
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, queue string, message any) error {
	args := m.Called(ctx, queue, message)
	return args.Error(0)
}

type stubResolver struct {
	addrs []string
	err   error
}

func (r *stubResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return r.addrs, r.err
}
