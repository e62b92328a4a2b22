// Package auth issues and verifies staff JWTs. The core registry never
// inspects tokens; handlers verify the bearer token here and pass the
// resolved identity into operations as a plain input.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmendes/bedboard/internal/config"
)

// actorKey is the gin context key holding the verified claims.
const actorKey = "actor"

// ErrBadCredentials is returned when login fails. The reason (unknown
// user vs wrong password) is deliberately not distinguished.
var ErrBadCredentials = errors.New("auth: invalid username or password")

// Staff is one entry of the staff registry.
type Staff struct {
	Username string
	Password string
	Name     string
	Role     string
}

// Claims are the JWT claims carried by a staff token.
type Claims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service verifies logins and signs tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	staff  map[string]Staff
}

// New builds a Service from config.
func New(cfg config.AuthConfig) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth: jwt secret is required")
	}
	staff := make(map[string]Staff, len(cfg.Staff))
	for _, s := range cfg.Staff {
		staff[s.Username] = Staff{
			Username: s.Username,
			Password: s.Password,
			Name:     s.Name,
			Role:     s.Role,
		}
	}
	return &Service{
		secret: []byte(cfg.JWTSecret),
		ttl:    time.Duration(cfg.TokenTTLHours) * time.Hour,
		staff:  staff,
	}, nil
}

// Login checks credentials and returns a signed token plus the staff
// record on success.
func (s *Service) Login(username, password string) (string, Staff, error) {
	st, ok := s.staff[username]
	if !ok || st.Password != password {
		return "", Staff{}, ErrBadCredentials
	}
	token, err := s.issue(st)
	if err != nil {
		return "", Staff{}, err
	}
	return token, st, nil
}

// issue signs a token for a staff member.
func (s *Service) issue(st Staff) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: st.Username,
		Name:     st.Name,
		Role:     st.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: verify: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("auth: token invalid")
	}
	return claims, nil
}

// Middleware is the gin bearer-token gate: 401 with no token, 403 with a
// bad or expired one. Verified claims are attached to the context.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied. No token provided."})
			return
		}
		claims, err := s.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token."})
			return
		}
		c.Set(actorKey, claims)
		c.Next()
	}
}

// Actor returns the verified claims attached by Middleware, if any.
func Actor(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
