package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, nil},
		{"keeps order", []string{"b", "a"}, []string{"b", "a"}},
		{"trims and drops blanks", []string{" a ", "", "  "}, []string{"a"}},
		{"dedupes after trim", []string{"a", " a", "b", "a "}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.in))
		})
	}
}
