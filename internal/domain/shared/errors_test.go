package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("recebimentos r1: %w", NewDomainError(CodeNotFound, "recebimento r1 não existe"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidState)
	assert.NotErrorIs(t, err, errors.New("Resource not found"))

	var de *DomainError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, "recebimento r1 não existe", de.Message)
}

func TestValidationError(t *testing.T) {
	assert.Equal(t, "valor: deve ser positivo", NewValidationError("valor", "deve ser positivo").Error())
	assert.Equal(t, "sem campo", NewValidationError("", "sem campo").Error())
	assert.Equal(t, CodeValidation, (&ValidationError{}).Code())
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{45, 0, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.pageSize), "total=%d size=%d", tt.total, tt.pageSize)
	}
	assert.Equal(t, 1, ClampPage(-3, 4))
	assert.Equal(t, 4, ClampPage(9, 4))
	assert.Equal(t, 1, ClampPage(2, 0))
}
