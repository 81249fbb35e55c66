package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"decorops/internal/access"
	"decorops/internal/models"
)

const (
	// RoleHeader selects the role when no signing secret is configured.
	RoleHeader = "X-Decor-Role"
	// UserHeader names the actor when no signing secret is configured.
	UserHeader = "X-Decor-User"

	actorKey = "decorops.actor"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Authenticator resolves the user behind a request. With a secret it
// verifies HS256 bearer tokens carrying sub, name and role claims. Without
// one, the role comes from RoleHeader and falls back to a fixed role.
type Authenticator struct {
	secret   []byte
	fallback models.Role
}

// NewAuthenticator builds an Authenticator. fallback is only consulted when
// secret is empty.
func NewAuthenticator(secret string, fallback models.Role) *Authenticator {
	return &Authenticator{secret: []byte(secret), fallback: fallback}
}

// Verifying reports whether bearer tokens are required.
func (a *Authenticator) Verifying() bool {
	return len(a.secret) > 0
}

// Issue signs a token for user that expires after ttl.
func (a *Authenticator) Issue(user models.User, ttl time.Duration, now time.Time) (string, error) {
	if !a.Verifying() {
		return "", errors.New("no signing secret configured")
	}
	if !user.Role.Valid() {
		return "", fmt.Errorf("unknown role %q", user.Role)
	}
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Resolve identifies the actor of r.
func (a *Authenticator) Resolve(r *http.Request) (models.User, error) {
	if !a.Verifying() {
		role := models.Role(strings.TrimSpace(r.Header.Get(RoleHeader)))
		if role == "" {
			role = a.fallback
		}
		name := strings.TrimSpace(r.Header.Get(UserHeader))
		if name == "" {
			name = string(role)
		}
		return models.User{ID: name, Name: name, Role: role}, nil
	}

	raw := extractToken(r)
	if raw == "" {
		return models.User{}, ErrMissingToken
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.User{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || !models.Role(role).Valid() {
		return models.User{}, fmt.Errorf("%w: missing subject or role", ErrInvalidToken)
	}
	if name == "" {
		name = sub
	}
	return models.User{ID: sub, Name: name, Role: models.Role(role)}, nil
}

func extractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.Split(auth, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

// actor is the resolved user and their permissions for one request.
type actor struct {
	models.User
	access.Grants
}

// authenticate resolves the actor and stores it on the context.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.auth.Resolve(c.Request)
		if err != nil {
			s.respondError(c, http.StatusUnauthorized, err)
			return
		}
		c.Set(actorKey, actor{User: user, Grants: s.policy.For(user.Role)})
		c.Next()
	}
}

// require rejects actors without the given permission.
func (s *Server) require(module models.Module, action models.Action) gin.HandlerFunc {
	perm := models.Permission{Module: module, Action: action}
	return func(c *gin.Context) {
		if !actorFrom(c).Has(perm) {
			s.respondError(c, http.StatusForbidden, fmt.Errorf("permission %s required", perm))
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(actor); ok {
			return a
		}
	}
	return actor{}
}
