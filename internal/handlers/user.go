package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradeflow/judge-engine/internal/auth"
	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/utils"
)

type currentUserResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          *model.User `json:"user"`
}

// GetCurrentUser handles GET /user. It is mounted behind
// auth.OptionalAccessTokenAuth so an absent Authorization header yields
// {authenticated: false} rather than a 401; a present but invalid token is
// still rejected with 401 by that middleware.
func (a *APIStore) GetCurrentUser(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := auth.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusOK, currentUserResponse{Authenticated: false})
		return
	}

	user, err := a.catalog.GetUser(ctx, userID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to load user", err)
		return
	}

	c.JSON(http.StatusOK, currentUserResponse{Authenticated: true, User: &user})
}
