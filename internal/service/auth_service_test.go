package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArtyomSF99/url-shortener/internal/entities"
	"github.com/ArtyomSF99/url-shortener/internal/hasher"
	"github.com/ArtyomSF99/url-shortener/internal/jwt"
	"github.com/ArtyomSF99/url-shortener/internal/models"
	"github.com/ArtyomSF99/url-shortener/internal/repository"
)

const testSecret = "test-secret"

func newTestHasher(t *testing.T) *hasher.Pool {
	pool := hasher.NewPool(bcrypt.MinCost, 2)
	t.Cleanup(pool.Close)
	return pool
}

func TestRegister_PublishesJob(t *testing.T) {
	users := new(MockUserRepository)
	pub := new(MockPublisher)
	svc := NewAuthService(users, newTestHasher(t), pub, "registration", jwt.NewJWTService(testSecret, time.Hour))
	ctx := context.Background()

	pub.On("Publish", ctx, "registration", RegistrationJob{Email: "alice@example.com", Password: "s3cret-pass"}).
		Return(nil).Once()

	resp, err := svc.Register(ctx, &models.RegisterRequest{Email: "  Alice@Example.COM ", Password: "s3cret-pass"})

	require.NoError(t, err)
	assert.Equal(t, RegistrationQueuedMessage, resp.Message)
	pub.AssertExpectations(t)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_PublishFailure(t *testing.T) {
	pub := new(MockPublisher)
	svc := NewAuthService(new(MockUserRepository), newTestHasher(t), pub, "registration", jwt.NewJWTService(testSecret, time.Hour))

	pub.On("Publish", mock.Anything, "registration", mock.Anything).Return(errors.New("broker down")).Once()

	resp, err := svc.Register(context.Background(), &models.RegisterRequest{Email: "a@example.com", Password: "s3cret-pass"})

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestSignIn(t *testing.T) {
	pool := newTestHasher(t)
	hash, err := pool.Hash(context.Background(), "s3cret-pass")
	require.NoError(t, err)

	user := &entities.User{ID: "user-1", Email: "alice@example.com", PasswordHash: hash}
	jwtService := jwt.NewJWTService(testSecret, time.Hour)

	tests := []struct {
		name     string
		email    string
		password string
		found    bool
		wantErr  error
	}{
		{"correct password", "Alice@example.com", "s3cret-pass", true, nil},
		{"wrong password", "alice@example.com", "wrong-pass", true, ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "s3cret-pass", false, ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			if tt.found {
				users.On("FindByEmail", mock.Anything, "alice@example.com").Return(user, nil).Once()
			} else {
				users.On("FindByEmail", mock.Anything, NormalizeEmail(tt.email)).Return(nil, repository.ErrNotFound).Once()
			}
			svc := NewAuthService(users, pool, new(MockPublisher), "registration", jwtService)

			resp, err := svc.SignIn(context.Background(), &models.LoginRequest{Email: tt.email, Password: tt.password})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			claims, err := jwtService.ValidateToken(resp.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, "user-1", claims.Subject)
			assert.Equal(t, "alice@example.com", claims.Email)
		})
	}
}

func TestProfile(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewAuthService(users, newTestHasher(t), new(MockPublisher), "registration", jwt.NewJWTService(testSecret, time.Hour))
	ctx := context.Background()

	users.On("FindByID", ctx, "user-1").Return(&entities.User{ID: "user-1", Email: "a@example.com"}, nil).Once()
	users.On("FindByID", ctx, "gone").Return(nil, repository.ErrNotFound).Once()

	user, err := svc.Profile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)

	_, err = svc.Profile(ctx, "gone")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func jobBody(t *testing.T, email, password string) []byte {
	body, err := json.Marshal(RegistrationJob{Email: email, Password: password})
	require.NoError(t, err)
	return body
}

func TestRegistrationProcessor_CreatesUser(t *testing.T) {
	users := new(MockUserRepository)
	pool := newTestHasher(t)
	p := NewRegistrationProcessor(users, pool)
	ctx := context.Background()

	var created *entities.User
	users.On("FindByEmail", ctx, "new@example.com").Return(nil, repository.ErrNotFound).Once()
	users.On("Create", ctx, mock.AnythingOfType("*entities.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*entities.User) }).
		Return(nil).Once()

	require.NoError(t, p.Handle(ctx, jobBody(t, "New@Example.com", "s3cret-pass")))

	require.NotNil(t, created)
	assert.Equal(t, "new@example.com", created.Email)
	assert.NotEqual(t, "s3cret-pass", created.PasswordHash)
	ok, err := pool.Compare(ctx, "s3cret-pass", created.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegistrationProcessor_ExistingUserIsAcked(t *testing.T) {
	users := new(MockUserRepository)
	p := NewRegistrationProcessor(users, newTestHasher(t))
	ctx := context.Background()

	users.On("FindByEmail", ctx, "dup@example.com").Return(&entities.User{ID: "user-1"}, nil).Once()

	assert.NoError(t, p.Handle(ctx, jobBody(t, "dup@example.com", "s3cret-pass")))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegistrationProcessor_DuplicateInsertIsAcked(t *testing.T) {
	users := new(MockUserRepository)
	p := NewRegistrationProcessor(users, newTestHasher(t))
	ctx := context.Background()

	users.On("FindByEmail", ctx, "dup@example.com").Return(nil, repository.ErrNotFound).Once()
	users.On("Create", ctx, mock.AnythingOfType("*entities.User")).Return(repository.ErrDuplicate).Once()

	assert.NoError(t, p.Handle(ctx, jobBody(t, "dup@example.com", "s3cret-pass")))
}

func TestRegistrationProcessor_OverlongPasswordIsAcked(t *testing.T) {
	users := new(MockUserRepository)
	p := NewRegistrationProcessor(users, newTestHasher(t))
	ctx := context.Background()

	users.On("FindByEmail", ctx, "long@example.com").Return(nil, repository.ErrNotFound).Once()

	// redelivery would fail the same way, so the job is dropped
	assert.NoError(t, p.Handle(ctx, jobBody(t, "long@example.com", strings.Repeat("p", 80))))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegistrationProcessor_StoreFailureIsRetried(t *testing.T) {
	users := new(MockUserRepository)
	p := NewRegistrationProcessor(users, newTestHasher(t))
	ctx := context.Background()

	users.On("FindByEmail", ctx, "a@example.com").Return(nil, errors.New("connection reset")).Once()

	assert.Error(t, p.Handle(ctx, jobBody(t, "a@example.com", "s3cret-pass")))
}

func TestRegistrationProcessor_DropsMalformedJobs(t *testing.T) {
	users := new(MockUserRepository)
	p := NewRegistrationProcessor(users, newTestHasher(t))

	assert.NoError(t, p.Handle(context.Background(), []byte("{not json")))
	assert.NoError(t, p.Handle(context.Background(), jobBody(t, " ", "s3cret-pass")))
	users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}
