package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"abcdefghijklmnop", 10, "abcdefg..."},
		{"abcdef", 3, "abc"},
		{"abcdef", 0, ""},
		{"Ünïcödé Tïtlé", 8, "Ünïcö..."},
		{"日本語の本", 5, "日本語の本"},
		{"日本語の本です", 5, "日本..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.in, tt.maxLen), "Truncate(%q, %d)", tt.in, tt.maxLen)
	}
}
