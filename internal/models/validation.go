package models

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	SlugMinLength = 4
	SlugMaxLength = 20

	// PasswordMaxBytes is the most bcrypt will hash
	PasswordMaxBytes = 72
)

var slugPattern = regexp.MustCompile(`^[\p{L}0-9_-]+$`)

// Reserved slugs that would shadow a route
var reservedSlugs = map[string]bool{
	"admin":    true,
	"api":      true,
	"www":      true,
	"mail":     true,
	"health":   true,
	"metrics":  true,
	"auth":     true,
	"login":    true,
	"register": true,
	"signin":   true,
	"signup":   true,
	"signout":  true,
	"logout":   true,
	"url":      true,
	"urls":     true,
	"users":    true,
	"qrcode":   true,
	"redirect": true,
}

// IsValidSlug reports whether s is 4-20 letters, digits, underscores or
// hyphens and not a reserved word.
func IsValidSlug(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < SlugMinLength || n > SlugMaxLength {
		return false
	}
	if !slugPattern.MatchString(s) {
		return false
	}
	return !reservedSlugs[strings.ToLower(s)]
}

// RegisterValidators adds the "slug" and "password" tags to gin's
// validator. "password" caps the length in bytes, not runes.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsValidSlug(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= PasswordMaxBytes
	})
}
