package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeflow/judge-engine/internal/auth"
	"github.com/gradeflow/judge-engine/internal/cfg"
)

func newAdminTestContext(headers map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("GET", "/admin/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.Request = req
	return c, w
}

func TestRequireAdminStaticToken(t *testing.T) {
	t.Parallel()

	a := &APIStore{config: cfg.Config{AdminToken: "operator-secret"}}

	t.Run("matching token is admitted", func(t *testing.T) {
		t.Parallel()
		c, w := newAdminTestContext(map[string]string{"X-Admin-Token": "operator-secret"})

		a.RequireAdmin(c)

		assert.False(t, c.IsAborted())
		assert.NotEqual(t, 401, w.Code)
		assert.True(t, auth.IsAdmin(c))
	})

	t.Run("no credentials at all is rejected", func(t *testing.T) {
		t.Parallel()
		c, w := newAdminTestContext(nil)

		a.RequireAdmin(c)

		assert.True(t, c.IsAborted())
		assert.Equal(t, 401, w.Code)
	})
}

func TestRequireAdminAllowListedEmail(t *testing.T) {
	t.Parallel()

	a := &APIStore{
		config: cfg.Config{AdminEmailList: []string{"ADMIN@example.com"}},
		tokens: auth.NewTokenIssuer("test-signing-secret", 0),
	}

	userID := uuid.New()
	token, err := a.tokens.Issue(userID, "admin@example.com")
	require.NoError(t, err)

	c, w := newAdminTestContext(map[string]string{"Authorization": "Bearer " + token})

	a.RequireAdmin(c)

	assert.False(t, c.IsAborted())
	assert.NotEqual(t, 401, w.Code)
	assert.NotEqual(t, 403, w.Code)

	gotID, err := auth.GetUserID(c)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
}

func TestRequireAdminRejectsUnknownBearerToken(t *testing.T) {
	t.Parallel()

	a := &APIStore{tokens: auth.NewTokenIssuer("test-signing-secret", 0)}

	c, w := newAdminTestContext(map[string]string{"Authorization": "Bearer garbage"})

	a.RequireAdmin(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, 401, w.Code)
}
