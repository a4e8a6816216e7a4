package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
)

func TestTranslate(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", fmt.Errorf("animal a1: %w", repository.ErrNotFound), ErrNotFound},
		{"duplicate", repository.ErrDuplicate, ErrConflict},
		{"not pending", fmt.Errorf("treatment t1: %w", repository.ErrNotPending), ErrConflict},
		{"other errors pass through", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err, "thing"), tt.want)
		})
	}

	assert.NoError(t, translate(nil, "thing"))
}

func TestValidationfAndForbiddenf(t *testing.T) {
	err := validationf("%s is required", "name")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation error: name is required", err.Error())

	err = forbiddenf("only authorities can verify farmers")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrValidation)
}
