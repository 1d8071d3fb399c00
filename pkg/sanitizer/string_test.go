package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Jazz   Night  ", "Jazz Night"},
		{"one\ttwo\nthree", "one two three"},
		{"", ""},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CollapseSpaces(tt.in))
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}
