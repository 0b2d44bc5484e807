package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/gradeflow/judge-engine/internal/api"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/exercises/missing", nil)
	return c, rec
}

func TestHandleErrorWithAPIError(t *testing.T) {
	c, rec := newTestContext()

	HandleError(c, &api.APIError{Code: http.StatusNotFound, Err: errors.New("no row"), ClientMsg: "exercise not found"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "exercise not found")
}

func TestHandleErrorWithPlainError(t *testing.T) {
	c, rec := newTestContext()

	HandleError(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}
