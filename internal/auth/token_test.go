// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenManager(""); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	m, err := NewTokenManager(testSecret)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	token, err := m.GenerateToken("alice", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Actor != "alice" {
		t.Errorf("actor = %q, want alice", claims.Actor)
	}
}

func TestValidateTokenRejections(t *testing.T) {
	t.Parallel()

	m, _ := NewTokenManager(testSecret)
	other, _ := NewTokenManager("ffffffffffffffffffffffffffffffff")

	expired, _ := m.GenerateToken("alice", -time.Minute)
	wrongKey, _ := other.GenerateToken("alice", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong key", wrongKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := m.ValidateToken(tt.token); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	m, _ := NewTokenManager(testSecret)
	valid, _ := m.GenerateToken("bob", time.Hour)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantTokenAuth bool
		wantActor     string
	}{
		{"anonymous", "", http.StatusOK, false, ""},
		{"valid bearer", "Bearer " + valid, http.StatusOK, true, "bob"},
		{"invalid bearer", "Bearer garbage", http.StatusUnauthorized, false, ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotTokenAuth bool
			var gotActor string
			handler := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotTokenAuth = IsTokenAuthenticated(r.Context())
				gotActor = ActorFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Code == http.StatusOK {
				if gotTokenAuth != tt.wantTokenAuth {
					t.Errorf("token auth = %v, want %v", gotTokenAuth, tt.wantTokenAuth)
				}
				if gotActor != tt.wantActor {
					t.Errorf("actor = %q, want %q", gotActor, tt.wantActor)
				}
			}
		})
	}
}
