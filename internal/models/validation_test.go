package models

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtyomSF99/url-shortener/internal/repository"
)

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug  string
		valid bool
	}{
		{"abcd", true},
		{"my_link-2024", true},
		{"привет", true},
		{"über-link", true},
		{"abc", false},
		{"a-very-long-slug-over-20", false},
		{"has space", false},
		{"dot.slug", false},
		{"slash/slug", false},
		{"Health", false},
		{"metrics", false},
	}

	for _, tc := range tests {
		t.Run(tc.slug, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsValidSlug(tc.slug))
		})
	}
}

func TestSlugLengthCountsRunes(t *testing.T) {
	// 20 two-byte letters
	assert.True(t, IsValidSlug(strings.Repeat("é", 20)))
	assert.False(t, IsValidSlug(strings.Repeat("é", 21)))
}

func TestRegisterValidators_BindingUsesSlugTag(t *testing.T) {
	require.NoError(t, RegisterValidators())

	custom := "taken"
	assert.NoError(t, binding.Validator.ValidateStruct(&CreateURLRequest{OriginalURL: "https://example.com", Slug: &custom}))
	assert.NoError(t, binding.Validator.ValidateStruct(&CreateURLRequest{OriginalURL: "https://example.com"}))

	bad := "no"
	assert.Error(t, binding.Validator.ValidateStruct(&CreateURLRequest{OriginalURL: "https://example.com", Slug: &bad}))
	assert.Error(t, binding.Validator.ValidateStruct(&UpdateURLRequest{Slug: "api"}))
	assert.Error(t, binding.Validator.ValidateStruct(&CreateURLRequest{OriginalURL: "not a url"}))
}

func TestRegisterValidators_PasswordFitsBcrypt(t *testing.T) {
	require.NoError(t, RegisterValidators())

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"short", "1234567", false},
		{"minimum", "12345678", true},
		{"bcrypt limit", strings.Repeat("a", PasswordMaxBytes), true},
		{"over bcrypt limit", strings.Repeat("a", PasswordMaxBytes+8), false},
		// 40 runes but 80 bytes
		{"multibyte over limit", strings.Repeat("é", 40), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			register := &RegisterRequest{Email: "user@example.com", Password: tc.password}
			login := &LoginRequest{Email: "user@example.com", Password: tc.password}
			if tc.valid {
				assert.NoError(t, binding.Validator.ValidateStruct(register))
				assert.NoError(t, binding.Validator.ValidateStruct(login))
			} else {
				assert.Error(t, binding.Validator.ValidateStruct(register))
				assert.Error(t, binding.Validator.ValidateStruct(login))
			}
		})
	}
}

func TestListURLsQuery_Options(t *testing.T) {
	opts := ListURLsQuery{}.Options()
	assert.Equal(t, repository.ListOptions{Page: 1, Limit: 10, SortBy: repository.SortByCreatedAt, SortOrder: repository.SortDesc}, opts)

	opts = ListURLsQuery{Page: 3, Limit: 25, SortBy: "visits", SortOrder: "ASC"}.Options()
	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, 50, opts.Offset())
	assert.Equal(t, repository.SortByVisits, opts.SortBy)
	assert.Equal(t, repository.SortAsc, opts.SortOrder)
}
