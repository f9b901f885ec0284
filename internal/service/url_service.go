package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ArtyomSF99/url-shortener/internal/cache"
	"github.com/ArtyomSF99/url-shortener/internal/entities"
	"github.com/ArtyomSF99/url-shortener/internal/metrics"
	"github.com/ArtyomSF99/url-shortener/internal/models"
	"github.com/ArtyomSF99/url-shortener/internal/repository"
)

const lookupTimeout = 3 * time.Second

// Resolver looks up a host name. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// URLService defines the interface for URL business logic
type URLService interface {
	CreateShortURL(ctx context.Context, req *models.CreateURLRequest, userID *string) (*entities.URL, error)
	Resolve(ctx context.Context, slug string) (string, error)
	GetBySlug(ctx context.Context, slug string) (*entities.URL, error)
	RenameSlug(ctx context.Context, id, userID, slug string) (*entities.URL, error)
	ListUserURLs(ctx context.Context, userID string, opts repository.ListOptions) (*models.PaginatedURLs, error)
	ListAll(ctx context.Context) ([]*entities.URL, error)
}

type urlService struct {
	repo     repository.URLRepository
	cache    cache.Cache
	slugs    *SlugAllocator
	resolver Resolver
	logger   *zap.Logger
}

// NewURLService creates a new URL service. cacheClient may be nil, the
// redirect path then always reads the store. A nil resolver skips the
// host lookup on creation.
func NewURLService(repo repository.URLRepository, cacheClient cache.Cache, resolver Resolver) URLService {
	return &urlService{
		repo:     repo,
		cache:    cacheClient,
		slugs:    NewSlugAllocator(repo),
		resolver: resolver,
		logger:   zap.L().With(zap.String("component", "URLService")),
	}
}

// validateDestination accepts absolute http(s) URLs whose host resolves.
func (s *urlService) validateDestination(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if net.ParseIP(host) == nil && !strings.Contains(strings.Trim(host, "."), ".") {
		return fmt.Errorf("%w: host %q has no top-level domain", ErrInvalidURL, host)
	}

	if s.resolver == nil {
		return nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	addrs, err := s.resolver.LookupHost(lookupCtx, host)
	if err != nil || len(addrs) == 0 {
		s.logger.Info("destination host does not resolve", zap.String("host", host), zap.Error(err))
		return fmt.Errorf("%w: host %q does not resolve", ErrInvalidURL, host)
	}
	return nil
}

// CreateShortURL stores a new URL under a custom or generated slug
func (s *urlService) CreateShortURL(ctx context.Context, req *models.CreateURLRequest, userID *string) (*entities.URL, error) {
	if err := s.validateDestination(ctx, req.OriginalURL); err != nil {
		metrics.URLCreationTotal.WithLabelValues("invalid_url").Inc()
		return nil, err
	}

	var custom string
	if req.Slug != nil {
		custom = strings.TrimSpace(*req.Slug)
	}

	slug, err := s.slugs.Allocate(ctx, custom)
	if err != nil {
		if errors.Is(err, ErrSlugConflict) {
			metrics.URLCreationTotal.WithLabelValues("conflict").Inc()
		}
		return nil, err
	}

	url := &entities.URL{
		Slug:        slug,
		OriginalURL: req.OriginalURL,
		UserID:      userID,
	}

	if err := s.repo.Create(ctx, url); err != nil {
		// lost a race with a concurrent insert of the same slug
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.URLCreationTotal.WithLabelValues("conflict").Inc()
			return nil, ErrSlugConflict
		}
		return nil, fmt.Errorf("failed to create URL: %w", err)
	}

	// the slug may have belonged to a URL that has since been renamed
	s.evict(ctx, url.Slug)

	metrics.URLCreationTotal.WithLabelValues("created").Inc()
	s.logger.Info("short url created", zap.String("slug", url.Slug), zap.String("id", url.ID))
	return url, nil
}

// Resolve returns the destination for slug and counts the visit. The
// cache only holds destinations, the counter always lives in the store.
func (s *urlService) Resolve(ctx context.Context, slug string) (string, error) {
	// the visit still counts if the client hangs up mid-request
	visitCtx := context.WithoutCancel(ctx)

	if dest, ok := s.cachedDestination(ctx, slug); ok {
		err := s.repo.IncrementVisits(visitCtx, slug)
		switch {
		case err == nil:
			metrics.RedirectsTotal.WithLabelValues("found").Inc()
			return dest, nil
		case errors.Is(err, repository.ErrNotFound):
			// the slug moved away after this entry was written
			s.logger.Warn("dropping stale cache entry", zap.String("slug", slug))
			s.evict(ctx, slug)
		default:
			metrics.VisitIncrementFailures.Inc()
			s.logger.Error("failed to increment visits", zap.String("slug", slug), zap.Error(err))
			metrics.RedirectsTotal.WithLabelValues("found").Inc()
			return dest, nil
		}
	}

	url, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RedirectsTotal.WithLabelValues("not_found").Inc()
		return "", ErrURLNotFound
	}
	if err != nil {
		metrics.RedirectsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to find URL: %w", err)
	}
	s.fill(ctx, url)

	if err := s.repo.IncrementVisits(visitCtx, slug); err != nil {
		metrics.VisitIncrementFailures.Inc()
		s.logger.Error("failed to increment visits", zap.String("slug", slug), zap.Error(err))
	}

	metrics.RedirectsTotal.WithLabelValues("found").Inc()
	return url.OriginalURL, nil
}

func (s *urlService) cachedDestination(ctx context.Context, slug string) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	val, err := s.cache.Get(ctx, cache.URLKey(slug))
	switch {
	case err == nil && val != "":
		metrics.CacheHitsTotal.WithLabelValues("redis").Inc()
		s.logger.Debug("cache hit", zap.String("slug", slug))
		return val, true
	case err == nil || errors.Is(err, cache.ErrMiss):
		metrics.CacheMissesTotal.WithLabelValues("redis").Inc()
		s.logger.Debug("cache miss", zap.String("slug", slug))
	default:
		metrics.CacheMissesTotal.WithLabelValues("redis").Inc()
		s.logger.Warn("cache read failed", zap.String("slug", slug), zap.Error(err))
	}
	return "", false
}

// fill caches the destination of url. A rename or a re-creation of the
// slug that committed before the write could not evict it, so the slug is
// read back and the entry dropped unless it still belongs to url.
func (s *urlService) fill(ctx context.Context, url *entities.URL) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, cache.URLKey(url.Slug), url.OriginalURL, 0); err != nil {
		s.logger.Warn("cache write failed", zap.String("slug", url.Slug), zap.Error(err))
		return
	}

	current, err := s.repo.FindBySlug(ctx, url.Slug)
	if err == nil && current.ID == url.ID {
		return
	}
	s.logger.Warn("slug changed while caching", zap.String("slug", url.Slug), zap.Error(err))
	s.evict(ctx, url.Slug)
}

func (s *urlService) evict(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.URLKey(slug)); err != nil {
		s.logger.Error("failed to evict cached slug", zap.String("slug", slug), zap.Error(err))
	}
}

// GetBySlug looks a URL up without counting a visit
func (s *urlService) GetBySlug(ctx context.Context, slug string) (*entities.URL, error) {
	url, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrURLNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find URL: %w", err)
	}
	return url, nil
}

// RenameSlug changes the slug of a URL owned by userID
func (s *urlService) RenameSlug(ctx context.Context, id, userID, slug string) (*entities.URL, error) {
	url, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrURLNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find URL: %w", err)
	}

	if !url.OwnedBy(userID) {
		s.logger.Warn("rename rejected for non-owner", zap.String("id", id), zap.String("user_id", userID))
		return nil, ErrNotOwner
	}

	if url.Slug == slug {
		return url, nil
	}

	existing, err := s.repo.FindBySlug(ctx, slug)
	switch {
	case err == nil && existing.ID != id:
		return nil, ErrSlugConflict
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to check slug availability: %w", err)
	}

	oldSlug := url.Slug
	if err := s.repo.UpdateSlug(ctx, id, slug); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrSlugConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrURLNotFound
		}
		return nil, fmt.Errorf("failed to update URL: %w", err)
	}
	url.Slug = slug

	s.evict(ctx, oldSlug)
	// the new slug may still hold an entry from a URL that owned it before
	s.evict(ctx, slug)

	s.logger.Info("slug renamed", zap.String("id", id), zap.String("from", oldSlug), zap.String("to", slug))
	return url, nil
}

// ListUserURLs returns one sorted page of the user's URLs
func (s *urlService) ListUserURLs(ctx context.Context, userID string, opts repository.ListOptions) (*models.PaginatedURLs, error) {
	urls, total, err := s.repo.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	return &models.PaginatedURLs{
		Data:  urls,
		Total: total,
		Page:  opts.Page,
		Limit: opts.Limit,
	}, nil
}

func (s *urlService) ListAll(ctx context.Context) ([]*entities.URL, error) {
	return s.repo.ListAll(ctx)
}
