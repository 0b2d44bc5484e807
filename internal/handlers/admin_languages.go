package handlers

import (
	"fmt"
	"net/http"

	"github.com/Masterminds/semver/v3"
	"github.com/gin-gonic/gin"

	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/utils"
)

// ListLanguages handles GET /languages, public metadata for the language
// switcher.
func (a *APIStore) ListLanguages(c *gin.Context) {
	ctx := c.Request.Context()

	languages, err := a.languageCache.Get(ctx)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to list languages", err)
		return
	}

	c.JSON(http.StatusOK, languages)
}

type languageWriteRequest struct {
	ID           string `json:"id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Extension    string `json:"extension" binding:"required"`
	Interpreter  string `json:"interpreter" binding:"required"`
	ExecImage    string `json:"execImage" binding:"required"`
	Version      string `json:"version" binding:"required"`
	DisplayOrder int    `json:"displayOrder"`
	Enabled      bool   `json:"enabled"`
}

// AdminUpsertLanguage handles POST /admin/languages: languages are few and
// slow-changing, so create and update share one idempotent upsert.
func (a *APIStore) AdminUpsertLanguage(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := utils.ParseBody[languageWriteRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if _, err := semver.NewVersion(req.Version); err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Sprintf("version %q is not valid semver", req.Version), err)
		return
	}

	language := model.Language{
		ID:           req.ID,
		Name:         req.Name,
		Extension:    req.Extension,
		Interpreter:  req.Interpreter,
		ExecImage:    req.ExecImage,
		Version:      req.Version,
		DisplayOrder: req.DisplayOrder,
		Enabled:      req.Enabled,
	}

	if err := a.catalog.UpsertLanguage(ctx, language); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to upsert language", err)
		return
	}

	if err := a.RefreshLanguages(ctx); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to refresh languages", err)
		return
	}

	c.JSON(http.StatusOK, language)
}
