// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

// Package auth validates API auth tokens. The events endpoints only need to
// know two things about a request: who the actor is, and whether the request
// arrived with an API token, because token-authenticated requests have their
// engine referrer forced to a fixed value regardless of what the client sent.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims carried by Faultline API tokens.
type Claims struct {
	Actor string   `json:"actor"`
	Scope []string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager creates and validates HMAC-SHA256 signed API tokens.
type TokenManager struct {
	secret []byte
}

// NewTokenManager returns a manager for the given signing secret.
func NewTokenManager(secret string) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required but was empty")
	}
	return &TokenManager{secret: []byte(secret)}, nil
}

// GenerateToken creates a signed API token for an actor.
func (m *TokenManager) GenerateToken(actor string, ttl time.Duration) (string, error) {
	claims := &Claims{
		Actor: actor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the token signature, algorithm and time claims.
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

type contextKey string

const (
	actorKey     contextKey = "auth_actor"
	tokenAuthKey contextKey = "auth_token"
)

// ContextWithTokenAuth marks the context as authenticated via API token.
func ContextWithTokenAuth(ctx context.Context, actor string) context.Context {
	ctx = context.WithValue(ctx, actorKey, actor)
	return context.WithValue(ctx, tokenAuthKey, true)
}

// IsTokenAuthenticated reports whether the request carried a valid API token.
func IsTokenAuthenticated(ctx context.Context) bool {
	ok, _ := ctx.Value(tokenAuthKey).(bool)
	return ok
}

// ActorFromContext returns the authenticated actor, or "" for anonymous
// requests.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey).(string)
	return actor
}

// Middleware validates an optional Authorization bearer token. A valid token
// marks the request token-authenticated; a present but invalid token is
// rejected with 401. Requests without an Authorization header pass through
// anonymous.
func Middleware(manager *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, "unsupported authorization scheme", http.StatusUnauthorized)
				return
			}

			claims, err := manager.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithTokenAuth(r.Context(), claims.Actor)))
		})
	}
}
