package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"

	"github.com/gradeflow/judge-engine/internal/api"
)

// HandleError reports err to telemetry via its *api.APIError wrapper (if it
// is one) and writes a structured JSON error response, aborting the gin
// chain. Any other error is treated as an opaque 500.
func HandleError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		apiErr.Report(ctx, apiErr.ClientMsg)
		c.AbortWithStatusJSON(apiErr.Code, gin.H{"code": apiErr.Code, "message": apiErr.ClientMsg})
		return
	}

	wrapped := &api.APIError{
		Code:      http.StatusInternalServerError,
		Err:       pkgerrors.WithStack(err),
		ClientMsg: "internal server error",
	}
	wrapped.Report(ctx, wrapped.ClientMsg)
	c.AbortWithStatusJSON(wrapped.Code, gin.H{"code": wrapped.Code, "message": wrapped.ClientMsg})
}

// RespondError is a convenience wrapper for handlers constructing the
// APIError inline.
func RespondError(c *gin.Context, code int, clientMsg string, cause error) {
	HandleError(c, &api.APIError{Code: code, Err: cause, ClientMsg: clientMsg})
}
