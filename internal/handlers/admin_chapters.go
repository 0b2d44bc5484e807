package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/utils"
)

// AdminListChapters handles GET /admin/chapters.
func (a *APIStore) AdminListChapters(c *gin.Context) {
	ctx := c.Request.Context()

	chapters, err := a.catalog.ListChapters(ctx, c.Query("languageId"))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to list chapters", err)
		return
	}

	c.JSON(http.StatusOK, chapters)
}

type chapterWriteRequest struct {
	LanguageID  string `json:"languageId" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	OrderIndex  int    `json:"orderIndex"`
}

// AdminCreateChapter handles POST /admin/chapters.
func (a *APIStore) AdminCreateChapter(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := utils.ParseBody[chapterWriteRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	created, err := a.catalog.CreateChapter(ctx, model.Chapter{
		LanguageID:  req.LanguageID,
		DisplayName: req.DisplayName,
		OrderIndex:  req.OrderIndex,
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to create chapter", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// AdminDeleteChapter handles DELETE /admin/chapters/{id}.
func (a *APIStore) AdminDeleteChapter(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid chapter id", err)
		return
	}

	if err := a.catalog.DeleteChapter(ctx, id); err != nil {
		respondCatalogError(c, err, "chapter", id.String())
		return
	}

	c.Status(http.StatusNoContent)
}
