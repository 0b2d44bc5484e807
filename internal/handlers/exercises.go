package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/utils"
)

// publicExercise strips the fields unauthenticated and non-admin callers
// must never see: the reference solution and every test case.
type publicExercise struct {
	ID          string `json:"id"`
	ChapterID   string `json:"chapterId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StarterCode string `json:"starterCode,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	OrderIndex  int    `json:"orderIndex"`
}

func toPublicExercise(e model.Exercise) publicExercise {
	return publicExercise{
		ID:          e.ID,
		ChapterID:   e.ChapterID.String(),
		Title:       e.Title,
		Description: e.Description,
		StarterCode: e.StarterCode,
		Difficulty:  string(e.Difficulty),
		OrderIndex:  e.OrderIndex,
	}
}

// ListExercises handles GET /exercises.
func (a *APIStore) ListExercises(c *gin.Context) {
	ctx := c.Request.Context()
	languageID := c.Query("languageId")

	exercises, err := a.catalog.ListExercises(ctx, languageID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to list exercises", err)
		return
	}

	out := make([]publicExercise, 0, len(exercises))
	for _, e := range exercises {
		out = append(out, toPublicExercise(e))
	}

	c.JSON(http.StatusOK, out)
}

// GetExercise handles GET /exercises/{id}.
func (a *APIStore) GetExercise(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	exercise, err := a.catalog.GetExercise(ctx, id)
	if err != nil {
		respondCatalogError(c, err, "exercise", id)
		return
	}

	c.JSON(http.StatusOK, toPublicExercise(exercise))
}
