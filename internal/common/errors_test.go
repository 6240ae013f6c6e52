package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		kind error
		code string
	}{
		{"invalid input", InvalidInputError("file must be a PDF", nil), ErrInvalidInput, CodeInvalidInput},
		{"upstream", UpstreamError(503, "extraction service failed", errors.New("non-2xx status: 503")), ErrUpstream, CodeUpstreamError},
		{"unavailable", UpstreamUnavailableError("matching service unreachable", context.DeadlineExceeded), ErrUpstreamUnavailable, CodeUpstreamUnavailable},
		{"persistence", PersistenceError("save orders", errors.New("constraint failed")), ErrPersistence, CodePersistenceError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.code, tt.err.Code)

			wrapped := fmt.Errorf("handler: %w", tt.err)
			var appErr *AppError
			assert.True(t, errors.As(wrapped, &appErr))
			assert.Equal(t, tt.kind, KindOf(wrapped))
		})
	}
}

func TestAppErrorKeepsCause(t *testing.T) {
	err := UpstreamUnavailableError("extraction service unreachable", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "UPSTREAM_UNAVAILABLE")
}

func TestUpstreamErrorCarriesStatus(t *testing.T) {
	err := UpstreamError(502, "matching service failed", nil)
	assert.Equal(t, 502, err.Status)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Nil(t, KindOf(errors.New("boom")))
	assert.Nil(t, KindOf(nil))
}
