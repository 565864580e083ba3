// Package repository holds the errors shared by the review stores. Every
// store enforces review ownership itself.
package repository

import "github.com/abhishek622/movieticket/pkg/apperr"

var (
	// ErrNotFound is returned when a requested document is not found.
	ErrNotFound = apperr.ErrNotFound
	// ErrPermission is returned when the caller does not own the document.
	ErrPermission = apperr.ErrPermission
)
