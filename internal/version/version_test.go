package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetCurrentVersion(t *testing.T) {
	require.Equal(t, DevVersion, GetCurrentVersion("dev"))
	require.Equal(t, DevVersion, GetCurrentVersion("demo"))
	require.Equal(t, Version, GetCurrentVersion("prod"))
}

func TestIsVersionGreaterOrEqualThan(t *testing.T) {
	tests := []struct {
		version string
		target  string
		want    bool
	}{
		{"1.2.0", "1.1.9", true},
		{"1.2.0", "1.2.0", true},
		{"1.1.9", "1.2.0", false},
		{"2.0.0", "1.99.99", true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, IsVersionGreaterOrEqualThan(tt.version, tt.target),
			"%s >= %s", tt.version, tt.target)
	}
}

func TestString(t *testing.T) {
	require.NotEmpty(t, String())
	require.Contains(t, StringFull(), "Version=")
}
