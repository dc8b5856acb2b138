// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// ever leaking a raw driver error. Unique-constraint violations are
// translated into the Duplicate* sentinels by inspecting which key the
// storage engine reports as violated.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an entity does not exist or has been
// soft-deleted. Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicateName is returned when a role or permission name collides
// with an existing row. Handlers should translate this into HTTP 400.
var ErrDuplicateName = errors.New("name already exists")

// ErrDuplicateEmail is returned when a user email collides with an
// existing row. Handlers should translate this into HTTP 400.
var ErrDuplicateEmail = errors.New("email already exists")

// ErrDuplicateUsername is returned when a username collides with an
// existing row. Handlers should translate this into HTTP 400.
var ErrDuplicateUsername = errors.New("username already exists")

// translateDuplicate maps a MySQL duplicate-entry error (1062) onto the
// matching domain sentinel by looking at the violated key name. Unrelated
// errors pass through unchanged. The username check runs before the name
// check because "username" contains "name".
func translateDuplicate(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	switch {
	case strings.Contains(msg, "email"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "username"):
		return ErrDuplicateUsername
	case strings.Contains(msg, "name"):
		return ErrDuplicateName
	}
	return err
}
