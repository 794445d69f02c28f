package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"violação direta", &pq.Error{Code: "23505"}, true},
		{"violação embrulhada", fmt.Errorf("gravar execução: %w", &pq.Error{Code: "23505"}), true},
		{"outro código", &pq.Error{Code: "23503"}, false},
		{"erro comum", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}
