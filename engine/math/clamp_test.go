package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name         string
		v, low, high uint32
		want         uint32
	}{
		{"inside", 3, 2, 16, 3},
		{"below", 3, 4, 8, 4},
		{"above", 3, 1, 2, 2},
		{"inverted range", 3, 5, 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.v, tt.low, tt.high))
		})
	}
}
