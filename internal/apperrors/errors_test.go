package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("price must be >= 0"), KindValidation},
		{"not found", NotFound("product %s not found", "x"), KindNotFound},
		{"conflict", Conflict("already a favorite"), KindConflict},
		{"persistence", Persistence(errors.New("connection reset"), "failed to load"), KindPersistence},
		{"wrapped", fmt.Errorf("create: %w", NotFound("category not found")), KindNotFound},
		{"plain error", errors.New("boom"), KindPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("brand %d missing", 7))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestPersistenceHidesDriverDetail(t *testing.T) {
	driverErr := errors.New("pq: relation \"products\" does not exist")
	err := Persistence(driverErr, "failed to load products")

	assert.Equal(t, "failed to load products", Message(err))
	assert.ErrorIs(t, err, driverErr)
	assert.Equal(t, "internal error", Message(errors.New("raw")))
}
