package services

import (
	"errors"

	"github.com/Lllllllleong/studymate/internal/store"
)

var (
	// ErrInvalidRequest marks caller mistakes such as a page number outside the document.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound marks an unknown pdf id.
	ErrNotFound = store.ErrNotFound
)
