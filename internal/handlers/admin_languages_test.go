package handlers

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
)

// TestLanguageVersionValidation documents the semver acceptance rules that
// AdminUpsertLanguage applies to Language.Version before it ever reaches the
// catalog.
func TestLanguageVersionValidation(t *testing.T) {
	t.Parallel()

	valid := []string{"3.12.4", "1.0.0", "2.1.0-beta.1", "0.0.1"}
	for _, v := range valid {
		v := v
		t.Run(v, func(t *testing.T) {
			t.Parallel()
			_, err := semver.NewVersion(v)
			assert.NoError(t, err)
		})
	}

	invalid := []string{"", "latest", "v", "3.x", "not-a-version"}
	for _, v := range invalid {
		v := v
		t.Run(v, func(t *testing.T) {
			t.Parallel()
			_, err := semver.NewVersion(v)
			assert.Error(t, err)
		})
	}
}
