package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/utils"
)

// fixturePath trims the leading "/" gin's wildcard params carry.
func fixturePath(c *gin.Context, name string) string {
	return strings.TrimPrefix(c.Param(name), "/")
}

type fixtureResponse struct {
	model.Fixture
	Content string `json:"content,omitempty"`
}

func toFixtureResponse(f model.Fixture) fixtureResponse {
	resp := fixtureResponse{Fixture: f}
	if f.Kind == model.FixtureKindFile {
		resp.Content = base64.StdEncoding.EncodeToString(f.Content)
	}
	return resp
}

// AdminListFixtures handles GET /admin/fixtures.
func (a *APIStore) AdminListFixtures(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := a.fixtures.List(ctx)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to list fixtures", err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// AdminGetFixture handles GET /admin/fixtures/{path}.
func (a *APIStore) AdminGetFixture(c *gin.Context) {
	ctx := c.Request.Context()
	path := fixturePath(c, "path")

	fixture, err := a.fixtures.Get(ctx, path)
	if err != nil {
		respondFixtureError(c, err, path)
		return
	}

	c.JSON(http.StatusOK, toFixtureResponse(fixture))
}

type putFixtureRequest struct {
	Kind        string `json:"kind"`
	Content     string `json:"content"`
	Permissions string `json:"permissions" binding:"required"`
}

// AdminPutFixture handles POST /admin/fixtures/{path}: creates or replaces
// a file fixture, or a folder when kind is "folder".
func (a *APIStore) AdminPutFixture(c *gin.Context) {
	ctx := c.Request.Context()
	path := fixturePath(c, "path")

	req, err := utils.ParseBody[putFixtureRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if model.FixtureKind(req.Kind) == model.FixtureKindFolder {
		folder, err := a.fixtures.PutFolder(ctx, path, req.Permissions)
		if err != nil {
			respondFixtureError(c, err, path)
			return
		}
		c.JSON(http.StatusCreated, folder)
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "content must be base64-encoded", err)
		return
	}

	fixture, err := a.fixtures.Put(ctx, path, content, req.Permissions)
	if err != nil {
		respondFixtureError(c, err, path)
		return
	}

	c.JSON(http.StatusCreated, toFixtureResponse(fixture))
}

// AdminDeleteFixture handles DELETE /admin/fixtures/{path}.
func (a *APIStore) AdminDeleteFixture(c *gin.Context) {
	ctx := c.Request.Context()
	path := fixturePath(c, "path")

	if err := a.fixtures.Delete(ctx, path); err != nil {
		respondFixtureError(c, err, path)
		return
	}

	c.Status(http.StatusNoContent)
}

type setPermissionsRequest struct {
	Permissions string `json:"permissions" binding:"required"`
}

// AdminSetFixturePermissions handles PUT /admin/fixtures/{path}/permissions.
func (a *APIStore) AdminSetFixturePermissions(c *gin.Context) {
	ctx := c.Request.Context()
	path := fixturePath(c, "path")

	req, err := utils.ParseBody[setPermissionsRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := a.fixtures.SetPermissions(ctx, path, req.Permissions); err != nil {
		respondFixtureError(c, err, path)
		return
	}

	c.Status(http.StatusNoContent)
}

// AdminListFolderContents handles GET /admin/fixtures/{folder}/contents.
func (a *APIStore) AdminListFolderContents(c *gin.Context) {
	ctx := c.Request.Context()
	folder := fixturePath(c, "folder")

	list, err := a.fixtures.ListFolder(ctx, folder)
	if err != nil {
		respondFixtureError(c, err, folder)
		return
	}

	c.JSON(http.StatusOK, list)
}

type putFolderFileRequest struct {
	Name        string `json:"name" binding:"required"`
	Content     string `json:"content"`
	Permissions string `json:"permissions" binding:"required"`
}

// AdminPutFolderFile handles POST /admin/fixtures/{folder}/files.
func (a *APIStore) AdminPutFolderFile(c *gin.Context) {
	ctx := c.Request.Context()
	folder := fixturePath(c, "folder")

	req, err := utils.ParseBody[putFolderFileRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "content must be base64-encoded", err)
		return
	}

	fixture, err := a.fixtures.PutInFolder(ctx, folder, req.Name, content, req.Permissions)
	if err != nil {
		respondFixtureError(c, err, folder+"/"+req.Name)
		return
	}

	c.JSON(http.StatusCreated, toFixtureResponse(fixture))
}

// AdminDeleteFolderFile handles DELETE /admin/fixtures/{folder}/files/{name},
// with name passed as a "?name=" query parameter since it follows a gin
// catch-all segment.
func (a *APIStore) AdminDeleteFolderFile(c *gin.Context) {
	ctx := c.Request.Context()
	folder := fixturePath(c, "folder")
	name := c.Query("name")
	if name == "" {
		utils.RespondError(c, http.StatusBadRequest, "name query parameter is required", errors.New("missing name"))
		return
	}

	if err := a.fixtures.DeleteInFolder(ctx, folder, name); err != nil {
		respondFixtureError(c, err, folder+"/"+name)
		return
	}

	c.Status(http.StatusNoContent)
}

// AdminSyncFixtures handles POST /admin/fixtures/sync: reconciles catalog
// metadata against what's actually on disk, per §4.5's syncWithStorage.
func (a *APIStore) AdminSyncFixtures(c *gin.Context) {
	ctx := c.Request.Context()

	removed, err := a.fixtures.SyncWithStorage(ctx)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to sync fixtures", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
