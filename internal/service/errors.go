package service

import (
	"errors"
	"fmt"
)

var (
	ErrSlugConflict       = errors.New("slug is already taken or a unique slug could not be generated")
	ErrURLNotFound        = errors.New("url not found")
	ErrInvalidURL         = errors.New("the provided URL is invalid or its domain cannot be reached")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	// ErrNotOwner matches ErrURLNotFound so callers cannot tell another
	// user's URL apart from a missing one by error code.
	ErrNotOwner = fmt.Errorf("%w: url belongs to another user", ErrURLNotFound)
)
