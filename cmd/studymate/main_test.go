package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Lllllllleong/studymate/internal/extract"
	"github.com/Lllllllleong/studymate/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", fmt.Errorf("wrap: %w", services.ErrInvalidRequest), exitInvalidRequest},
		{"page out of range", &extract.ExtractionError{Kind: extract.KindInvalidPageNumber}, exitInvalidRequest},
		{"unknown pdf", fmt.Errorf("failed to load document: %w", services.ErrNotFound), exitNotFound},
		{"anything else", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
