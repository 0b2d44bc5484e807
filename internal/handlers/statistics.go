package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gradeflow/judge-engine/internal/auth"
	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/utils"
)

// statisticsResponse is the current-user stats view, optionally scoped to
// one exercise.
type statisticsResponse struct {
	CompletedExercises int                     `json:"completedExercises"`
	TotalAttempts      int                      `json:"totalAttempts"`
	WeightedPassRate   float64                 `json:"weightedPassRate"`
	Achievements       []model.UserAchievement `json:"achievements"`
	Exercise           *model.UserProgress      `json:"exercise,omitempty"`
}

func (a *APIStore) buildStatistics(ctx context.Context, userID uuid.UUID, exerciseID string, window timeWindow) (statisticsResponse, error) {
	progressList, err := a.catalog.ListProgressForUser(ctx, userID)
	if err != nil {
		return statisticsResponse{}, err
	}

	completed, attempts := 0, 0
	var completedWeight, seenWeight float64
	for _, p := range progressList {
		if !window.includes(p.FirstSeenAt) {
			continue
		}

		weight := a.exerciseWeight(ctx, p.ExerciseID)
		seenWeight += weight

		if p.Completed {
			completed++
			completedWeight += weight
		}
		attempts += p.TotalAttempts
	}

	achievements, err := a.catalog.ListUserAchievements(ctx, userID)
	if err != nil {
		return statisticsResponse{}, err
	}

	resp := statisticsResponse{
		CompletedExercises: completed,
		TotalAttempts:      attempts,
		Achievements:       achievements,
	}
	if seenWeight > 0 {
		resp.WeightedPassRate = completedWeight / seenWeight
	}

	if exerciseID != "" {
		p, err := a.catalog.GetProgress(ctx, userID, exerciseID)
		if err == nil {
			resp.Exercise = &p
		}
	}

	return resp, nil
}

// exerciseWeight sums a TestCase.Weight across exerciseID's test cases,
// treating an unset (zero) weight as 1 so unweighted exercises still
// contribute their natural share to the rollup. Falls back to 1 if the
// exercise can't be loaded (e.g. since deleted).
func (a *APIStore) exerciseWeight(ctx context.Context, exerciseID string) float64 {
	exercise, apiErr := a.exerciseCache.Get(ctx, exerciseID)
	if apiErr != nil || len(exercise.TestCases) == 0 {
		return 1
	}

	var total float64
	for _, tc := range exercise.TestCases {
		if tc.Weight > 0 {
			total += tc.Weight
		} else {
			total++
		}
	}
	return total
}

// timeWindow bounds buildStatistics's attempt/completion tally to a
// [Start, End] range; the zero value includes everything.
type timeWindow struct {
	start time.Time
	end   time.Time
}

func (w timeWindow) includes(t time.Time) bool {
	if !w.start.IsZero() && t.Before(w.start) {
		return false
	}
	if !w.end.IsZero() && t.After(w.end) {
		return false
	}
	return true
}

func parseTimeWindow(c *gin.Context) (timeWindow, error) {
	now := time.Now()

	startParam, err := queryUnixSeconds(c, "start")
	if err != nil {
		return timeWindow{}, err
	}
	endParam, err := queryUnixSeconds(c, "end")
	if err != nil {
		return timeWindow{}, err
	}

	if startParam == nil && endParam == nil {
		return timeWindow{}, nil
	}

	start, end, err := utils.ValidateDates(startParam, endParam, time.Unix(0, 0), now)
	if err != nil {
		return timeWindow{}, err
	}

	return timeWindow{start: start, end: end}, nil
}

func queryUnixSeconds(c *gin.Context, key string) (*int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// GetStatistics handles GET /statistics and GET /statistics/{exerciseId},
// with an optional "?start=" / "?end=" unix-second time-window filter.
func (a *APIStore) GetStatistics(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := auth.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required", err)
		return
	}

	window, err := parseTimeWindow(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid start/end query parameter", err)
		return
	}

	stats, err := a.buildStatistics(ctx, userID, c.Param("exerciseId"), window)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to load statistics", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
