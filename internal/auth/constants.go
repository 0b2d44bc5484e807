package auth

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	userIDContextKey string = "user_id"
	isAdminContextKey string = "is_admin"
)

var (
	ErrNotFoundInContext = errors.New("not found in context")
	ErrInvalidType       = errors.New("unexpected type")
)

type ginContextValueHelper[T any] struct {
	contextKey string
}

func (g *ginContextValueHelper[T]) set(c *gin.Context, val T) {
	c.Set(g.contextKey, val)
}

func (g *ginContextValueHelper[T]) get(c *gin.Context) (T, error) {
	var t T

	v := c.Value(g.contextKey)
	if v == nil {
		return t, ErrNotFoundInContext
	}

	t, ok := v.(T)
	if !ok {
		return t, fmt.Errorf("%w: wanted %T, got %T",
			ErrInvalidType, t, v)
	}

	return t, nil
}

func (g *ginContextValueHelper[T]) safeGet(c *gin.Context) T {
	v, err := g.get(c)
	if err != nil {
		zap.L().Warn("failed to get "+g.contextKey, zap.Error(err))
	}
	return v
}

var (
	userIDHelper  = ginContextValueHelper[uuid.UUID]{userIDContextKey}
	isAdminHelper = ginContextValueHelper[bool]{isAdminContextKey}
)

func setUserID(c *gin.Context, userID uuid.UUID) {
	userIDHelper.set(c, userID)
}

// SetUserID is setUserID for authenticators composed outside this package
// (e.g. handlers.APIStore.RequireAdmin, which layers user-record admin
// checks on top of AccessTokenAuth's JWT verification).
func SetUserID(c *gin.Context, userID uuid.UUID) {
	setUserID(c, userID)
}

// GetUserID returns the authenticated user ID, or ErrNotFoundInContext on an
// unauthenticated request (the Unauthenticated scheme never sets one).
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	return userIDHelper.get(c)
}

// SafeGetUserID is GetUserID for handlers mounted only behind AccessTokenAuth,
// where absence indicates a middleware wiring bug rather than a valid state.
func SafeGetUserID(c *gin.Context) uuid.UUID {
	return userIDHelper.safeGet(c)
}

func setIsAdmin(c *gin.Context, isAdmin bool) {
	isAdminHelper.set(c, isAdmin)
}

// SetIsAdmin is setIsAdmin for authenticators composed outside this package.
func SetIsAdmin(c *gin.Context, isAdmin bool) {
	setIsAdmin(c, isAdmin)
}

// IsAdmin reports whether the request carried a valid admin credential.
// It defaults to false for any request that never ran through an admin
// authenticator.
func IsAdmin(c *gin.Context) bool {
	return isAdminHelper.safeGet(c)
}
