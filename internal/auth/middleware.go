package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gradeflow/judge-engine/internal/api"
	"github.com/gradeflow/judge-engine/internal/cfg"
	"github.com/gradeflow/judge-engine/internal/telemetry"
)

var tracer = otel.Tracer("github.com/gradeflow/judge-engine/internal/auth")

type AuthorizationHeaderMissingError struct{}

func (e *AuthorizationHeaderMissingError) Error() string {
	return "authorization header is missing"
}

var (
	ErrNoAuthHeader      = &AuthorizationHeaderMissingError{}
	ErrInvalidAuthHeader = errors.New("authorization header is malformed")
)

type headerKey struct {
	name         string
	prefix       string
	removePrefix string
}

// commonAuthenticator extracts a bearer-style credential from a fixed
// header, hands it to validationFunction, and stashes the result under
// contextKey on success. Each security scheme in this package is one
// instance of this generic.
type commonAuthenticator[T any] struct {
	name               string
	headerKey          headerKey
	validationFunction func(ctx context.Context, token string) (T, *api.APIError)
	setContext         func(c *gin.Context, result T)
	errorMessage       string
	optional           bool
}

func (a *commonAuthenticator[T]) getHeaderKeyFromRequest(c *gin.Context) (string, error) {
	key := c.GetHeader(a.headerKey.name)
	if key == "" {
		return "", ErrNoAuthHeader
	}

	if a.headerKey.removePrefix != "" {
		key = strings.TrimSpace(strings.TrimPrefix(key, a.headerKey.removePrefix))
	}

	if !strings.HasPrefix(key, a.headerKey.prefix) {
		return "", ErrInvalidAuthHeader
	}

	return key, nil
}

// Middleware returns a gin.HandlerFunc enforcing this scheme. When optional
// is set, a missing header simply skips to the next handler instead of
// aborting the request, so public routes can still see an authenticated
// user when a token happens to be present.
func (a *commonAuthenticator[T]) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "authenticate."+a.name)
		defer span.End()

		token, err := a.getHeaderKeyFromRequest(c)
		if err != nil {
			if a.optional && errors.Is(err, ErrNoAuthHeader) {
				c.Next()
				return
			}

			telemetry.ReportError(ctx, "authorization header missing or malformed", err,
				attribute.String("auth.scheme", a.name))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		result, validationErr := a.validationFunction(ctx, token)
		if validationErr != nil {
			validationErr.Report(ctx, a.errorMessage, attribute.String("auth.scheme", a.name))
			c.AbortWithStatusJSON(validationErr.Code, gin.H{"message": validationErr.ClientMsg})
			return
		}

		telemetry.ReportEvent(ctx, "credential validated", attribute.String("auth.scheme", a.name))
		a.setContext(c, result)
		c.Next()
	}
}

func adminTokenValidationFunction(lookup func(ctx context.Context, rawToken string) (bool, error), staticToken string) func(ctx context.Context, token string) (bool, *api.APIError) {
	return func(ctx context.Context, token string) (bool, *api.APIError) {
		if staticToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(staticToken)) == 1 {
			return true, nil
		}

		if lookup != nil {
			ok, err := lookup(ctx, token)
			if err != nil {
				return false, &api.APIError{Code: http.StatusInternalServerError, Err: err, ClientMsg: "Failed to validate admin token."}
			}
			if ok {
				return true, nil
			}
		}

		return false, &api.APIError{
			Code:      http.StatusUnauthorized,
			Err:       errors.New("invalid admin token"),
			ClientMsg: "Invalid admin token.",
		}
	}
}

func accessTokenValidationFunction(issuer *TokenIssuer) func(ctx context.Context, token string) (uuid.UUID, *api.APIError) {
	return func(_ context.Context, token string) (uuid.UUID, *api.APIError) {
		userID, _, err := issuer.Verify(token)
		if err != nil {
			return uuid.Nil, &api.APIError{
				Code:      http.StatusUnauthorized,
				Err:       err,
				ClientMsg: "Invalid or expired access token, please sign in again.",
			}
		}

		return userID, nil
	}
}

// AdminTokenLookup resolves a raw admin token header to whether a
// currently-valid hashed admin token matches it. handlers.APIStore's
// AdminTokenLookup implements it by hashing the raw token and checking the
// catalog's admin_tokens table.
type AdminTokenLookup func(ctx context.Context, rawToken string) (bool, error)

// AccessTokenAuth requires a valid "Authorization: Bearer <jwt>" header and
// sets the authenticated user ID in the gin context.
func AccessTokenAuth(issuer *TokenIssuer) gin.HandlerFunc {
	a := &commonAuthenticator[uuid.UUID]{
		name: "AccessTokenAuth",
		headerKey: headerKey{
			name:         "Authorization",
			prefix:       "",
			removePrefix: "Bearer ",
		},
		validationFunction: accessTokenValidationFunction(issuer),
		setContext:         setUserID,
		errorMessage:       "invalid access token",
	}

	return a.Middleware()
}

// OptionalAccessTokenAuth behaves like AccessTokenAuth but lets requests
// without any Authorization header through unauthenticated, so handlers can
// personalize a response for a logged-in caller without requiring login.
func OptionalAccessTokenAuth(issuer *TokenIssuer) gin.HandlerFunc {
	a := &commonAuthenticator[uuid.UUID]{
		name: "AccessTokenAuth",
		headerKey: headerKey{
			name:         "Authorization",
			prefix:       "",
			removePrefix: "Bearer ",
		},
		validationFunction: accessTokenValidationFunction(issuer),
		setContext:         setUserID,
		errorMessage:       "invalid access token",
		optional:           true,
	}

	return a.Middleware()
}

// AdminTokenAuth requires "X-Admin-Token" to match either the configured
// static admin token or a hashed token issued through the catalog.
func AdminTokenAuth(config cfg.Config, lookup AdminTokenLookup) gin.HandlerFunc {
	a := &commonAuthenticator[bool]{
		name: "AdminTokenAuth",
		headerKey: headerKey{
			name: "X-Admin-Token",
		},
		validationFunction: adminTokenValidationFunction(lookup, config.AdminToken),
		setContext:         func(c *gin.Context, _ bool) { setIsAdmin(c, true) },
		errorMessage:       "invalid admin token",
	}

	return a.Middleware()
}

// RequireAdminEmail promotes an already-authenticated user to admin status
// when their claimed email appears in the configured admin email allow-list,
// independent of the X-Admin-Token scheme above. It must run after
// AccessTokenAuth.
func RequireAdminEmail(config cfg.Config, issuer *TokenIssuer) gin.HandlerFunc {
	allow := make(map[string]struct{}, len(config.AdminEmailList))
	for _, e := range config.AdminEmailList {
		allow[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}

	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
		if raw == "" {
			c.Next()
			return
		}

		_, claims, err := issuer.Verify(raw)
		if err != nil {
			c.Next()
			return
		}

		if _, ok := allow[strings.ToLower(claims.Email)]; ok {
			setIsAdmin(c, true)
		}

		c.Next()
	}
}
