// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package middleware

import (
	"net/http"
	"strings"

	"github.com/bankchen1/deiex-admin-sub000/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// TokenValidator reports whether a bearer token is acceptable.
type TokenValidator interface {
	ValidateToken(token string) (bool, error)
}

// publicSuffixes are reachable without a token; they are how a token is obtained.
var publicSuffixes = []string{"/auth/login", "/auth/refresh"}

// AuthMiddleware handles bearer token authentication for the dev API server
type AuthMiddleware struct {
	cfg        *config.Config
	validators []TokenValidator
}

// NewAuthMiddleware creates a new auth middleware instance. Validators are
// consulted in order, then the static tokens from the config.
func NewAuthMiddleware(cfg *config.Config, validators ...TokenValidator) *AuthMiddleware {
	m := &AuthMiddleware{cfg: cfg}
	for _, v := range validators {
		if v != nil {
			m.validators = append(m.validators, v)
		}
	}
	return m
}

// BearerAuthMiddleware creates a new auth middleware handler
func BearerAuthMiddleware(cfg *config.Config, validators ...TokenValidator) gin.HandlerFunc {
	return NewAuthMiddleware(cfg, validators...).Handler()
}

// Handler returns the gin middleware handler function
func (m *AuthMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fast path: if auth is disabled, allow all requests
		if !m.cfg.Auth.Enabled || isPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		for _, v := range m.validators {
			valid, err := v.ValidateToken(token)
			if err != nil {
				log.Warn().Err(err).Msg("token validation failed")
				continue
			}
			if valid {
				c.Next()
				return
			}
		}

		// Finally, check static tokens
		for _, validToken := range m.cfg.Auth.Tokens {
			if token == validToken {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		c.Abort()
	}
}

func isPublic(path string) bool {
	path = strings.TrimSuffix(path, "/")
	for _, s := range publicSuffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}
