package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gradeflow/judge-engine/internal/catalog"
	"github.com/gradeflow/judge-engine/internal/fixtures"
	"github.com/gradeflow/judge-engine/internal/utils"
)

// respondCatalogError maps the Catalog Store's sentinel errors onto the
// §7 error-kind table: NotFound -> 404, ValidationError -> 400, anything
// else -> StorageError -> 500.
func respondCatalogError(c *gin.Context, err error, resource, id string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, fmt.Sprintf("%s '%s' not found", resource, id), err)
	case errors.Is(err, catalog.ErrConflict), errors.Is(err, catalog.ErrInvalidExerciseID):
		utils.RespondError(c, http.StatusBadRequest, err.Error(), err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, fmt.Sprintf("failed to load %s", resource), err)
	}
}

// respondFixtureError maps the Fixture Store's sentinel errors the same way.
func respondFixtureError(c *gin.Context, err error, path string) {
	switch {
	case errors.Is(err, fixtures.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, fmt.Sprintf("fixture '%s' not found", path), err)
	case errors.Is(err, fixtures.ErrInvalidPath), errors.Is(err, fixtures.ErrInvalidPermissions),
		errors.Is(err, fixtures.ErrNotAFile), errors.Is(err, fixtures.ErrNotAFolder):
		utils.RespondError(c, http.StatusBadRequest, err.Error(), err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, fmt.Sprintf("fixture operation failed for '%s'", path), err)
	}
}
