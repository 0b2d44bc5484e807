package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gradeflow/judge-engine/internal/auth"
	"github.com/gradeflow/judge-engine/internal/grading"
	"github.com/gradeflow/judge-engine/internal/utils"
)

type runExerciseRequest struct {
	Script     string `json:"script" binding:"required"`
	LanguageID string `json:"languageId"`
}

type runExerciseResponse struct {
	Results    []grading.TestResult `json:"results"`
	Statistics statisticsResponse   `json:"statistics"`
}

// RunExercise handles POST /exercises/{id}/run. It requires authentication:
// the submission becomes an attempt recorded against the caller's progress.
func (a *APIStore) RunExercise(c *gin.Context) {
	ctx := c.Request.Context()
	exerciseID := c.Param("id")

	userID, err := auth.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required", err)
		return
	}

	allowed, retryAfter, err := a.runLimiter.Allow(ctx, userID.String())
	if err != nil {
		a.log.Error(ctx, "rate limit check failed, allowing request", zap.Error(err))
	} else if !allowed {
		c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter))
		utils.RespondError(c, http.StatusTooManyRequests, "too many submissions, slow down", errors.New("rate limited"))
		return
	}

	req, err := utils.ParseBody[runExerciseRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	exercise, apiErr := a.exerciseCache.Get(ctx, exerciseID)
	if apiErr != nil {
		utils.HandleError(c, apiErr)
		return
	}

	languageID := req.LanguageID
	if languageID == "" {
		chapter, chErr := a.catalog.GetChapter(ctx, exercise.ChapterID)
		if chErr != nil {
			utils.RespondError(c, http.StatusInternalServerError, "failed to resolve exercise language", chErr)
			return
		}
		languageID = chapter.LanguageID
	}

	results, err := a.orchestrator.Grade(ctx, *exercise, req.Script, languageID)
	if err != nil {
		respondGradingError(c, err)
		return
	}

	allPassed := true
	for _, r := range results {
		if !r.Passed {
			allPassed = false
			break
		}
	}

	// A failure here must not fail the response: the grade is authoritative
	// even if recording the attempt or an achievement hiccups.
	if _, _, err := a.progress.RecordAttempt(ctx, userID, exerciseID, allPassed, req.Script); err != nil {
		a.log.Error(ctx, "failed to record attempt", zap.Error(err))
	}

	stats, err := a.buildStatistics(ctx, userID, exerciseID, timeWindow{})
	if err != nil {
		a.log.Error(ctx, "failed to build statistics after grading", zap.Error(err))
	}

	c.JSON(http.StatusOK, runExerciseResponse{Results: results, Statistics: stats})
}
