package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

func TestCheckSchemaCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		stored        string
		current       string
		expectError   bool
		errorContains string
	}{
		{
			name:    "exact match",
			stored:  "1.2.0",
			current: "1.2.0",
		},
		{
			name:    "older minor",
			stored:  "1.1.0",
			current: "1.2.0",
		},
		{
			name:    "patch differs",
			stored:  "1.2.5",
			current: "1.2.0",
		},
		{
			name:    "v prefix",
			stored:  "v1.2.0",
			current: "1.2.0",
		},
		{
			name:    "build metadata",
			stored:  "1.2.0+build123",
			current: "1.2.0",
		},
		{
			name:          "newer minor",
			stored:        "1.3.0",
			current:       "1.2.0",
			expectError:   true,
			errorContains: "is newer than",
		},
		{
			name:          "major version differs",
			stored:        "2.0.0",
			current:       "1.2.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},
		{
			name:          "older major",
			stored:        "0.9.0",
			current:       "1.0.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},
		{
			name:          "invalid stored version",
			stored:        "not-a-version",
			current:       "1.2.0",
			expectError:   true,
			errorContains: "invalid stored schema version",
		},
		{
			name:          "empty current version",
			stored:        "1.2.0",
			current:       "",
			expectError:   true,
			errorContains: "invalid schema version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSchemaCompatibility(tt.stored, tt.current)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeSchemaMismatch))
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSchemaVersionIsValid(t *testing.T) {
	require.NoError(t, CheckSchemaCompatibility(SchemaVersion, SchemaVersion))
}

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	assert.Equal(t, Version, v)
}
