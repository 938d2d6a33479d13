package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/types"
)

const (
	ContextAccess = "access"
	ContextClaims = "claims"
	ContextUserID = "user_id"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// ResolveAccess records whether the request reads or writes. It runs once,
// before authentication. publicWrites lists routes as "METHOD /full/path"
// (gin's route pattern) that anonymous callers may write to.
func ResolveAccess(publicWrites ...string) gin.HandlerFunc {
	public := make(map[string]struct{}, len(publicWrites))
	for _, route := range publicWrites {
		public[route] = struct{}{}
	}
	return func(c *gin.Context) {
		access := types.AccessFromMethod(c.Request.Method)
		if _, ok := public[c.Request.Method+" "+c.FullPath()]; ok && access == types.AccessWrite {
			access = types.AccessPublic
		}
		c.Set(ContextAccess, access)
		c.Next()
	}
}

func AccessFrom(c *gin.Context) types.Access {
	if v, ok := c.Get(ContextAccess); ok {
		if access, ok := v.(types.Access); ok {
			return access
		}
	}
	return types.AccessFromMethod(c.Request.Method)
}

// AuthMiddleware validates bearer tokens. Reads and public writes without a
// token continue anonymously; other writes without one are rejected. A token that is present but
// invalid is always rejected.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if AccessFrom(c).AllowsAnonymous() {
				c.Next()
				return
			}
			abortUnauthorized(c, "authentication credentials were not provided")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || token == "" || !(strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "Token")) {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// RequireAuth rejects anonymous callers on routes that read private data.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ClaimsFrom(c) == nil {
			abortUnauthorized(c, "authentication credentials were not provided")
			return
		}
		c.Next()
	}
}

func ClaimsFrom(c *gin.Context) *types.TokenClaims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*types.TokenClaims); ok {
			return claims
		}
	}
	return nil
}

// ViewerFrom returns the authenticated caller or nil for anonymous requests.
func ViewerFrom(c *gin.Context) *types.Viewer {
	if claims := ClaimsFrom(c); claims != nil {
		return claims.Viewer()
	}
	return nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: msg})
}
