package middleware

import (
	"net/http"
	"strings"

	"github.com/fotitos/backend/internal/auth"
	"github.com/fotitos/backend/internal/httperror"
	"github.com/fotitos/backend/internal/models"
	"github.com/fotitos/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ClaimsKey is the echo context key the verified identity claims are stored under
const ClaimsKey = "user"

// AuthInterceptor gates routes on authentication (Logged) and post ownership
// (Authorized). The two are independently composable: Authorized expects Logged
// to have run first.
type AuthInterceptor struct {
	tokens   *auth.TokenService
	postRepo repositories.PostRepository
}

// NewAuthInterceptor creates a new AuthInterceptor
func NewAuthInterceptor(tokens *auth.TokenService, postRepo repositories.PostRepository) *AuthInterceptor {
	return &AuthInterceptor{tokens: tokens, postRepo: postRepo}
}

// Logged validates the bearer header, verifies the token and stores the identity
// claims in the request context. Missing or malformed headers are 401; a token
// that fails verification is 498.
func (i *AuthInterceptor) Logged(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return httperror.New(http.StatusUnauthorized, "Not authorized", "Not authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return httperror.New(http.StatusUnauthorized, "Not authorized", "No Bearer in authorization header")
		}

		claims, err := i.tokens.VerifyToken(parts[1])
		if err != nil {
			return err
		}

		c.Set(ClaimsKey, claims)
		return next(c)
	}
}

// Authorized loads the target post and lets the request through only when the
// caller owns it. A missing claim means the interceptor ordering is broken, not
// that authentication failed, hence 498 instead of 401.
func (i *AuthInterceptor) Authorized(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(ClaimsKey).(*models.JwtCustomClaims)
		if !ok {
			return httperror.New(auth.StatusInvalidToken, "Token not found", "Token not found in authorized interceptor")
		}

		post, err := i.postRepo.QueryByID(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}

		if post.Owner == nil || post.Owner.ID.Hex() != claims.ID {
			return httperror.New(http.StatusUnauthorized, "Not Authorized", "Not Authorized")
		}
		return next(c)
	}
}

// GetClaims extracts the identity claims attached by Logged, if any
func GetClaims(c echo.Context) (*models.JwtCustomClaims, bool) {
	claims, ok := c.Get(ClaimsKey).(*models.JwtCustomClaims)
	return claims, ok
}
