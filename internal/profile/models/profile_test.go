package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "auditlink/pkg/domain-errors"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"patient", RolePatient, false},
		{" Insurer ", RoleInsurer, false},
		{"PROVIDER", RoleProvider, false},
		{"", "", true},
		{"admin", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewProfile(t *testing.T) {
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("trims and parses", func(t *testing.T) {
		p, err := NewProfile("patient-1", SaveProfileRequest{DisplayName: "  Ada  ", Role: "patient"}, now)
		require.NoError(t, err)
		assert.Equal(t, "Ada", p.DisplayName)
		assert.Equal(t, RolePatient, p.Role)
		assert.Equal(t, now, p.UpdatedAt)
	})

	t.Run("display name bounds", func(t *testing.T) {
		_, err := NewProfile("p", SaveProfileRequest{DisplayName: "   ", Role: "patient"}, now)
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))

		_, err = NewProfile("p", SaveProfileRequest{DisplayName: strings.Repeat("é", 100), Role: "patient"}, now)
		assert.NoError(t, err)

		_, err = NewProfile("p", SaveProfileRequest{DisplayName: strings.Repeat("a", 101), Role: "patient"}, now)
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
	})

	t.Run("requires principal", func(t *testing.T) {
		_, err := NewProfile("", SaveProfileRequest{DisplayName: "Ada", Role: "patient"}, now)
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}
