package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/ArtyomSF99/url-shortener/internal/entities"
)

const dbTimeout = 5 * time.Second

// SortField is the closed set of keys a user listing can be ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByVisits    SortField = "visits"
)

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

var sortColumns = map[SortField]string{
	SortByCreatedAt: "created_at",
	SortByVisits:    "visits",
}

var sortDirections = map[SortOrder]string{
	SortAsc:  "ASC",
	SortDesc: "DESC",
}

// ListOptions selects one page of a user's URLs.
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    SortField
	SortOrder SortOrder
}

// Offset is the number of rows skipped before the page starts.
func (o ListOptions) Offset() int {
	if o.Page < 1 {
		return 0
	}
	return (o.Page - 1) * o.Limit
}

// orderBy maps the options onto trusted column and direction identifiers.
func (o ListOptions) orderBy() string {
	column, ok := sortColumns[o.SortBy]
	if !ok {
		column = sortColumns[SortByCreatedAt]
	}
	direction, ok := sortDirections[o.SortOrder]
	if !ok {
		direction = sortDirections[SortDesc]
	}
	return column + " " + direction
}

// URLRepository defines the interface for URL database operations
type URLRepository interface {
	Create(ctx context.Context, url *entities.URL) error
	FindBySlug(ctx context.Context, slug string) (*entities.URL, error)
	FindByID(ctx context.Context, id string) (*entities.URL, error)
	IncrementVisits(ctx context.Context, slug string) error
	UpdateSlug(ctx context.Context, id, slug string) error
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]*entities.URL, int, error)
	ListAll(ctx context.Context) ([]*entities.URL, error)
}

type urlRepository struct {
	db *sql.DB
}

// NewURLRepository creates a new URL repository
func NewURLRepository(db *sql.DB) URLRepository {
	return &urlRepository{db: db}
}

const urlColumns = `id, slug, original_url, visits, created_at, user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanURL(row rowScanner) (*entities.URL, error) {
	var (
		url    entities.URL
		userID sql.NullString
	)
	if err := row.Scan(&url.ID, &url.Slug, &url.OriginalURL, &url.Visits, &url.CreatedAt, &userID); err != nil {
		return nil, err
	}
	if userID.Valid {
		url.UserID = &userID.String
	}
	url.CreatedAt = url.CreatedAt.UTC()
	return &url, nil
}

// Create inserts a new URL. ID and CreatedAt are assigned when empty.
// A slug that is already stored yields ErrDuplicate.
func (r *urlRepository) Create(ctx context.Context, url *entities.URL) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if url.ID == "" {
		url.ID = shortuuid.New()
	}
	if url.CreatedAt.IsZero() {
		url.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	query := `
		INSERT INTO urls (id, slug, original_url, visits, created_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var userID sql.NullString
	if url.UserID != nil {
		userID = sql.NullString{String: *url.UserID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, url.ID, url.Slug, url.OriginalURL, url.Visits, url.CreatedAt, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slug %q: %w", url.Slug, ErrDuplicate)
		}
		return fmt.Errorf("failed to create URL: %w", err)
	}

	return nil
}

func (r *urlRepository) findOne(ctx context.Context, where string, arg any) (*entities.URL, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `SELECT ` + urlColumns + ` FROM urls WHERE ` + where + ` = $1`

	url, err := scanURL(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find URL: %w", err)
	}
	return url, nil
}

// FindBySlug finds a URL by its slug
func (r *urlRepository) FindBySlug(ctx context.Context, slug string) (*entities.URL, error) {
	return r.findOne(ctx, "slug", slug)
}

// FindByID finds a URL by its identifier
func (r *urlRepository) FindByID(ctx context.Context, id string) (*entities.URL, error) {
	return r.findOne(ctx, "id", id)
}

// IncrementVisits adds one visit in a single UPDATE so concurrent
// redirects never lose a count.
func (r *urlRepository) IncrementVisits(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `UPDATE urls SET visits = visits + 1 WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to increment visits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSlug renames a URL. The unique constraint decides races.
func (r *urlRepository) UpdateSlug(ctx context.Context, id, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `UPDATE urls SET slug = $1 WHERE id = $2`, slug, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slug %q: %w", slug, ErrDuplicate)
		}
		return fmt.Errorf("failed to update URL: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns one page of the user's URLs and the user's total URL count.
func (r *urlRepository) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]*entities.URL, int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM urls WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count URLs: %w", err)
	}

	query := `SELECT ` + urlColumns + ` FROM urls WHERE user_id = $1 ORDER BY ` + opts.orderBy() + ` LIMIT $2 OFFSET $3`

	urls, err := r.query(ctx, query, userID, opts.Limit, opts.Offset())
	if err != nil {
		return nil, 0, err
	}
	return urls, total, nil
}

// ListAll returns every URL, newest first
func (r *urlRepository) ListAll(ctx context.Context) ([]*entities.URL, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return r.query(ctx, `SELECT `+urlColumns+` FROM urls ORDER BY created_at DESC`)
}

func (r *urlRepository) query(ctx context.Context, query string, args ...any) ([]*entities.URL, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get URLs: %w", err)
	}
	defer rows.Close()

	urls := make([]*entities.URL, 0)
	for rows.Next() {
		url, err := scanURL(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, url)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating URLs: %w", err)
	}

	return urls, nil
}
