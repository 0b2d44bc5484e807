package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradeflow/judge-engine/internal/auth"
	"github.com/gradeflow/judge-engine/internal/utils"
)

// AdminCreateAdminToken handles POST /admin/admin-tokens: mints a new
// hashed admin bootstrap token, callable by any caller RequireAdmin admits
// (an admin token, static or hashed, or an admin user's access token). The
// raw value is returned exactly once.
func (a *APIStore) AdminCreateAdminToken(c *gin.Context) {
	ctx := c.Request.Context()

	key, err := auth.GenerateKey(auth.AdminTokenPrefix)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to generate admin token", err)
		return
	}

	if err := a.catalog.CreateAdminToken(ctx, key.HashedValue, key.MaskedValue); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to persist admin token", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": key.PrefixedRawValue, "masked": key.MaskedValue})
}

type revokeAdminTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// AdminRevokeAdminToken handles DELETE /admin/admin-tokens: revokes a
// previously-issued hashed admin token by its raw value.
func (a *APIStore) AdminRevokeAdminToken(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := utils.ParseBody[revokeAdminTokenRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	hashed, err := auth.HashToken(auth.AdminTokenPrefix, req.Token)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "malformed admin token", err)
		return
	}

	if err := a.catalog.RevokeAdminToken(ctx, hashed); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to revoke admin token", err)
		return
	}

	c.Status(http.StatusNoContent)
}
