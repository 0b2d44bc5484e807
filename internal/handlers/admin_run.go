package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradeflow/judge-engine/internal/grading"
	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/utils"
)

type testSolutionRequest struct {
	Solution   string `json:"solution" binding:"required"`
	LanguageID string `json:"languageId" binding:"required"`
}

// AdminTestSolution handles POST /admin/test-solution: runs a reference
// script once with no test cases and no progress recorded, for an admin
// sanity-checking an exercise's solution.
func (a *APIStore) AdminTestSolution(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := utils.ParseBody[testSolutionRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := a.orchestrator.RunSolution(ctx, req.Solution, req.LanguageID)
	if err != nil {
		respondGradingError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type runTestCaseRequest struct {
	Solution    string              `json:"solution" binding:"required"`
	LanguageID  string              `json:"languageId" binding:"required"`
	Arguments   []string            `json:"arguments"`
	Input       []string            `json:"input"`
	Fixtures    []model.FixtureRef  `json:"fixtures"`
	OutputFiles map[string]string   `json:"outputFiles"`
}

// AdminRunTestCase handles POST /admin/run-test-case: runs one ad-hoc
// (solution, arguments, stdin, fixtures) tuple and returns the RunResult
// augmented with per-output-file hashes, without persisting anything.
func (a *APIStore) AdminRunTestCase(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := utils.ParseBody[runTestCaseRequest](ctx, c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := a.orchestrator.RunTestCase(ctx, grading.AdHocRequest{
		Solution:    req.Solution,
		LanguageID:  req.LanguageID,
		Arguments:   req.Arguments,
		StdinLines:  req.Input,
		Fixtures:    req.Fixtures,
		OutputFiles: req.OutputFiles,
	})
	if err != nil {
		respondGradingError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func respondGradingError(c *gin.Context, err error) {
	var unknownLang *grading.ErrUnknownLanguage
	if errors.As(err, &unknownLang) {
		utils.RespondError(c, http.StatusBadRequest, unknownLang.Error(), err)
		return
	}

	utils.RespondError(c, http.StatusInternalServerError, "execution failed", err)
}
