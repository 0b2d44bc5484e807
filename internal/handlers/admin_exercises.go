package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gradeflow/judge-engine/internal/catalog"
	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/utils"
)

// AdminListExercises handles GET /admin/exercises: every exercise,
// including test cases and solutions.
func (a *APIStore) AdminListExercises(c *gin.Context) {
	ctx := c.Request.Context()
	languageID := c.Query("languageId")

	exercises, err := a.catalog.ListExercises(ctx, languageID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to list exercises", err)
		return
	}

	full := make([]model.Exercise, 0, len(exercises))
	for _, e := range exercises {
		withTests, err := a.catalog.GetExerciseWithTests(ctx, e.ID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "failed to load test cases", err)
			return
		}
		full = append(full, withTests)
	}

	c.JSON(http.StatusOK, full)
}

// AdminGetExercise handles GET /admin/exercises/{id}/full.
func (a *APIStore) AdminGetExercise(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	exercise, err := a.catalog.GetExerciseWithTests(ctx, id)
	if err != nil {
		respondCatalogError(c, err, "exercise", id)
		return
	}

	c.JSON(http.StatusOK, exercise)
}

type exerciseWriteRequest struct {
	ChapterID   uuid.UUID         `json:"chapterId" binding:"required"`
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Solution    string            `json:"solution"`
	StarterCode string            `json:"starterCode"`
	Difficulty  string            `json:"difficulty"`
	OrderIndex  int               `json:"orderIndex"`
	TestCases   []model.TestCase `json:"testCases"`
}

// AdminCreateExercise handles POST /admin/exercises.
func (a *APIStore) AdminCreateExercise(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if id == "" {
		id = c.Query("id")
	}

	req, err := utils.ParseBody[exerciseWriteRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	exercise := model.Exercise{
		ID:          id,
		ChapterID:   req.ChapterID,
		Title:       req.Title,
		Description: req.Description,
		Solution:    req.Solution,
		StarterCode: req.StarterCode,
		Difficulty:  model.Difficulty(req.Difficulty),
		OrderIndex:  req.OrderIndex,
		TestCases:   req.TestCases,
	}

	created, err := a.catalog.CreateExercise(ctx, exercise)
	if err != nil {
		respondCatalogError(c, err, "exercise", id)
		return
	}

	a.exerciseCache.Invalidate(created.ID)
	c.JSON(http.StatusCreated, created)
}

// AdminUpdateExercise handles PUT /admin/exercises/{id}.
func (a *APIStore) AdminUpdateExercise(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	req, err := utils.ParseBody[exerciseWriteRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	exercise := model.Exercise{
		ChapterID:   req.ChapterID,
		Title:       req.Title,
		Description: req.Description,
		Solution:    req.Solution,
		StarterCode: req.StarterCode,
		Difficulty:  model.Difficulty(req.Difficulty),
		OrderIndex:  req.OrderIndex,
		TestCases:   req.TestCases,
	}

	updated, err := a.catalog.UpdateExercise(ctx, id, exercise)
	if err != nil {
		respondCatalogError(c, err, "exercise", id)
		return
	}

	a.exerciseCache.Invalidate(id)
	c.JSON(http.StatusOK, updated)
}

// AdminDeleteExercise handles DELETE /admin/exercises/{id}.
func (a *APIStore) AdminDeleteExercise(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := a.catalog.DeleteExercise(ctx, id); err != nil {
		respondCatalogError(c, err, "exercise", id)
		return
	}

	a.exerciseCache.Invalidate(id)
	c.Status(http.StatusNoContent)
}

type reorderRequest struct {
	Entries []struct {
		ExerciseID string    `json:"exerciseId" binding:"required"`
		ChapterID  uuid.UUID `json:"chapterId" binding:"required"`
		OrderIndex int       `json:"orderIndex"`
	} `json:"entries" binding:"required"`
}

// AdminReorderExercises handles POST /admin/exercises/reorder.
func (a *APIStore) AdminReorderExercises(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := utils.ParseBody[reorderRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	entries := make([]catalog.ExerciseReorder, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, catalog.ExerciseReorder{
			ExerciseID: e.ExerciseID,
			ChapterID:  e.ChapterID,
			OrderIndex: e.OrderIndex,
		})
	}

	if err := a.catalog.ReorderExercises(ctx, entries); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to reorder exercises", err)
		return
	}

	for _, e := range entries {
		a.exerciseCache.Invalidate(e.ExerciseID)
	}

	c.Status(http.StatusNoContent)
}
