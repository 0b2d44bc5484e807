package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/utils"
)

const (
	usersDefaultPageLimit int32 = 50
	usersMaxPageLimit     int32 = 200
)

// AdminListUsers handles GET /admin/users, cursor-paginated by
// (createdAt, id) with an optional "?limit=" and "?nextToken=" and an
// "X-Next-Token" response header when more users remain.
func (a *APIStore) AdminListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := a.catalog.ListUsers(ctx)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to list users", err)
		return
	}

	// Newest first, matching the cursor's "defaults to now" convention: the
	// first page (no token) walks backward from the present moment.
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID.String() > users[j].ID.String()
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	params := utils.PaginationParams{NextToken: queryStringPtr(c, "nextToken")}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, parseErr := parseLimit(limitStr); parseErr == nil {
			params.Limit = &limit
		}
	}

	page, err := utils.NewPagination[model.User](params, utils.PaginationConfig{
		DefaultLimit: usersDefaultPageLimit,
		MaxLimit:     usersMaxPageLimit,
	})
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid pagination token", err)
		return
	}

	window := seekToCursor(users, page.CursorTime(), page.CursorID())
	out := page.ProcessResultsWithHeader(c, window, func(u model.User) (time.Time, string) {
		return u.CreatedAt, u.ID.String()
	})

	c.JSON(http.StatusOK, out)
}

func queryStringPtr(c *gin.Context, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}

func parseLimit(s string) (int32, error) {
	limit, err := strconv.ParseInt(s, 10, 32)
	return int32(limit), err
}

// seekToCursor returns the subslice of a newest-first sorted list that comes
// strictly after the cursor position (i.e. strictly older), or the whole
// list for the first page (cursor defaults to "now", after every real row).
func seekToCursor(users []model.User, cursorTime time.Time, cursorID string) []model.User {
	idx := sort.Search(len(users), func(i int) bool {
		if users[i].CreatedAt.Equal(cursorTime) {
			return users[i].ID.String() < cursorID
		}
		return users[i].CreatedAt.Before(cursorTime)
	})
	return users[idx:]
}

// AdminGetUser handles GET /admin/users/{id}.
func (a *APIStore) AdminGetUser(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	user, err := a.catalog.GetUser(ctx, id)
	if err != nil {
		respondCatalogError(c, err, "user", id.String())
		return
	}

	c.JSON(http.StatusOK, user)
}

type setUserAdminRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

// AdminUpdateUser handles PUT /admin/users/{id}: currently only
// promotes/demotes admin status, the one mutable field on a User.
func (a *APIStore) AdminUpdateUser(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	req, err := utils.ParseBody[setUserAdminRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := a.catalog.SetUserAdmin(ctx, id, req.IsAdmin); err != nil {
		respondCatalogError(c, err, "user", id.String())
		return
	}

	user, err := a.catalog.GetUser(ctx, id)
	if err != nil {
		respondCatalogError(c, err, "user", id.String())
		return
	}

	c.JSON(http.StatusOK, user)
}

// AdminDeleteUser handles DELETE /admin/users/{id}.
func (a *APIStore) AdminDeleteUser(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	if err := a.catalog.DeleteUser(ctx, id); err != nil {
		respondCatalogError(c, err, "user", id.String())
		return
	}

	c.Status(http.StatusNoContent)
}
