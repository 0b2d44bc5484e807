package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	cases := []struct {
		path    string
		wantErr bool
	}{
		{"scripts/setup.sh", false},
		{"fixture.txt", false},
		{"", true},
		{"../etc/passwd", true},
		{"scripts\\setup.sh", true},
		{"/absolute/path", true},
	}

	for _, tc := range cases {
		err := ValidatePath(tc.path)
		if tc.wantErr {
			assert.Error(t, err, tc.path)
		} else {
			assert.NoError(t, err, tc.path)
		}
	}
}

func TestPermissionsToMode(t *testing.T) {
	mode, err := PermissionsToMode("rwxr-xr-x")
	require.NoError(t, err)
	assert.Equal(t, uint32(0o755), mode)

	mode, err = PermissionsToMode("rw-r--r--")
	require.NoError(t, err)
	assert.Equal(t, uint32(0o644), mode)

	_, err = PermissionsToMode("rwxrwxrw")
	assert.ErrorIs(t, err, ErrInvalidPermissions)
}

func TestModeToPermissionsRoundTrip(t *testing.T) {
	for _, perms := range []string{"rwxr-xr-x", "rw-r--r--", "rwxrwxrwx", "r--------"} {
		mode, err := PermissionsToMode(perms)
		require.NoError(t, err)
		assert.Equal(t, perms, ModeToPermissions(mode))
	}
}
