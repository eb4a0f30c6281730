package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"equipment-tracker/internal/platform/apierr"
)

const (
	CtxUserIDKey = "user_id"
	CtxRoleKey   = "role"
)

// RequireAuth: Authorization: Bearer <token> を検証して context に sub/role を詰める
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, secret) {
			return
		}
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	set := roleSet(roles)
	return func(c *gin.Context) {
		if !authorize(c, set) {
			return
		}
		c.Next()
	}
}

// Policy is the pair of guards the feature packages put on their write routes.
type Policy struct {
	Operator gin.HandlerFunc // any signed-in account
	Admin    gin.HandlerFunc // role admin
}

// NewPolicy returns pass-through guards when auth is disabled.
func NewPolicy(enabled bool, secret string) Policy {
	if !enabled {
		pass := func(c *gin.Context) { c.Next() }
		return Policy{Operator: pass, Admin: pass}
	}
	key := []byte(secret)
	admins := roleSet([]string{RoleAdmin})
	operators := roleSet([]string{RoleAdmin, RoleOperator})
	return Policy{
		Operator: func(c *gin.Context) {
			if authenticate(c, key) && authorize(c, operators) {
				c.Next()
			}
		},
		Admin: func(c *gin.Context) {
			if authenticate(c, key) && authorize(c, admins) {
				c.Next()
			}
		},
	}
}

func authenticate(c *gin.Context, secret []byte) bool {
	h := c.GetHeader("Authorization")
	if h == "" {
		apierr.AbortWith(c, apierr.ErrUnauthorized("missing Authorization header"))
		return false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		apierr.AbortWith(c, apierr.ErrUnauthorized("invalid Authorization header"))
		return false
	}

	var claims Claims
	// alg 固定（none攻撃とか回避）
	token, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.Subject == "" {
		apierr.AbortWith(c, apierr.ErrUnauthorized("invalid token"))
		return false
	}

	c.Set(CtxUserIDKey, claims.Subject)
	c.Set(CtxRoleKey, claims.Role)
	return true
}

func authorize(c *gin.Context, allowed map[string]struct{}) bool {
	role := c.GetString(CtxRoleKey)
	if _, ok := allowed[role]; !ok || role == "" {
		apierr.AbortWith(c, apierr.ErrForbidden("forbidden"))
		return false
	}
	return true
}

func roleSet(roles []string) map[string]struct{} {
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		if r == "" {
			continue
		}
		set[r] = struct{}{}
	}
	return set
}

// UserID returns the authenticated account id, "" when auth is disabled.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
