// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as services
// and handlers to distinguish between different failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a row
// they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of the
// current state of the row, such as editing a submitted activity.
var ErrConflict = errors.New("conflict")

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrActivityNotFound   = errors.New("activity not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrAssignmentExists   = errors.New("assignment already exists")
)

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
