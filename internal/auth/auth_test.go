package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestParseToken(t *testing.T) {
	valid, err := NewToken(secret, models.Caller{ID: "u1", Role: RoleAdmin, Tier: models.TierPro}, "a@example.com", time.Hour)
	require.NoError(t, err)

	expired, err := NewToken(secret, models.Caller{ID: "u1"}, "", -time.Minute)
	require.NoError(t, err)

	otherSecret, err := NewToken([]byte("other"), models.Caller{ID: "u1"}, "", time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString(secret)
	require.NoError(t, err)

	noSubject, err := NewToken(secret, models.Caller{}, "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  []byte
		token   string
		wantErr bool
	}{
		{"Valid token", secret, valid, false},
		{"Expired token", secret, expired, true},
		{"Wrong secret", secret, otherSecret, true},
		{"Missing expiry", secret, noExpiry, true},
		{"Missing subject", secret, noSubject, true},
		{"Garbage", secret, "not-a-token", true},
		{"Verification not configured", nil, valid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.secret, tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", claims.Subject)
			assert.Equal(t, "a@example.com", claims.Email)
		})
	}
}

func TestClaims_Caller(t *testing.T) {
	tests := []struct {
		name     string
		claims   Claims
		expected models.Caller
	}{
		{
			name:     "Agency admin",
			claims:   Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}, Role: "admin", Tier: "agency"},
			expected: models.Caller{ID: "u1", Role: RoleAdmin, Tier: models.TierAgency},
		},
		{
			name:     "Pro user",
			claims:   Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u2"}, Role: "user", Tier: "pro"},
			expected: models.Caller{ID: "u2", Role: RoleUser, Tier: models.TierPro},
		},
		{
			name:     "Unknown values fall back",
			claims:   Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u3"}, Role: "owner", Tier: "platinum"},
			expected: models.Caller{ID: "u3", Role: RoleUser, Tier: models.TierFree},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.claims.Caller())
		})
	}
}

func TestMiddleware_Authenticate(t *testing.T) {
	middleware := NewMiddleware(string(secret))

	var seen models.Caller
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		require.True(t, ok)
		seen = caller
		w.WriteHeader(http.StatusOK)
	}))

	token, err := NewToken(secret, models.Caller{ID: "u1", Role: RoleUser, Tier: models.TierPro}, "", time.Hour)
	require.NoError(t, err)

	t.Run("Anonymous caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/audit/run", nil)
		req.RemoteAddr = "203.0.113.7:52100"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.Caller{ID: "anon:203.0.113.7", Role: RoleUser, Tier: models.TierFree}, seen)
	})

	t.Run("Forwarded header from untrusted peer is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/audit/run", nil)
		req.RemoteAddr = "203.0.113.7:52100"
		req.Header.Set("X-Forwarded-For", "198.51.100.2, 10.0.0.1")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "anon:203.0.113.7", seen.ID)
	})

	t.Run("Valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/audit/run", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.Caller{ID: "u1", Role: RoleUser, Tier: models.TierPro}, seen)
	})

	for _, header := range []string{"Bearer nope", "Basic dXNlcjpwYXNz", "Bearer "} {
		t.Run("Rejected "+header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/audit/run", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized", body["error"])
		})
	}
}

func TestMiddleware_TrustedProxies(t *testing.T) {
	middleware := NewMiddleware(string(secret), "10.0.0.0/8", "192.168.1.10", "not-an-ip")

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{"Direct client", "203.0.113.7:52100", "", "anon:203.0.113.7"},
		{"Spoofed header from client", "203.0.113.7:52100", "10.0.0.9", "anon:203.0.113.7"},
		{"Behind one proxy", "10.1.2.3:443", "198.51.100.2", "anon:198.51.100.2"},
		{"Client prepends a fake hop", "10.1.2.3:443", "1.2.3.4, 198.51.100.2", "anon:198.51.100.2"},
		{"Behind two proxies", "192.168.1.10:443", "198.51.100.2, 10.4.4.4", "anon:198.51.100.2"},
		{"Proxy without header", "10.1.2.3:443", "", "anon:10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen models.Caller
			handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = CallerFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/audit/run", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expected, seen.ID)
		})
	}
}

func TestMiddleware_QuotaIgnoresRotatedForwardedHeader(t *testing.T) {
	middleware := NewMiddleware(string(secret))
	limiter := NewTierLimiter(func(models.Tier) int { return 3 })

	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, _ := CallerFrom(r.Context())
		if !limiter.Allow(caller) {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/audit/run", nil)
		req.RemoteAddr = "203.0.113.7:52100"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 3, allowed)
	assert.Equal(t, 1, limiter.Len())
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	middleware := NewMiddleware(string(secret))
	handler := middleware.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		caller   *models.Caller
		expected int
	}{
		{"Admin", &models.Caller{ID: "u1", Role: RoleAdmin}, http.StatusNoContent},
		{"User", &models.Caller{ID: "u2", Role: RoleUser}, http.StatusForbidden},
		{"No caller", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/audit/x", nil)
			if tt.caller != nil {
				req = req.WithContext(WithCaller(req.Context(), *tt.caller))
			}
			rec := httptest.NewRecorder()

			handler(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestTierLimiter(t *testing.T) {
	quota := func(tier models.Tier) int {
		switch tier {
		case models.TierPro:
			return 5
		case models.TierAgency:
			return 0
		default:
			return 3
		}
	}
	limiter := NewTierLimiter(quota)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	free := models.Caller{ID: "u1", Tier: models.TierFree}
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.AllowAt(free, now), "audit %d", i+1)
	}
	assert.False(t, limiter.AllowAt(free, now), "fourth audit of the day")

	assert.True(t, limiter.AllowAt(models.Caller{ID: "u2", Tier: models.TierFree}, now), "quotas are per caller")

	assert.True(t, limiter.AllowAt(free, now.Add(9*time.Hour)), "a free audit refills every 8 hours")
	assert.False(t, limiter.AllowAt(free, now.Add(9*time.Hour)))

	upgraded := models.Caller{ID: "u1", Tier: models.TierPro}
	for i := 0; i < 5; i++ {
		assert.True(t, limiter.AllowAt(upgraded, now.Add(9*time.Hour)))
	}
	assert.False(t, limiter.AllowAt(upgraded, now.Add(9*time.Hour)))

	agency := models.Caller{ID: "u3", Tier: models.TierAgency}
	for i := 0; i < 1000; i++ {
		require.True(t, limiter.AllowAt(agency, now))
	}
}

func TestTierLimiter_EvictsRefilledBuckets(t *testing.T) {
	limiter := NewTierLimiter(func(models.Tier) int { return 3 })
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		require.True(t, limiter.AllowAt(models.Caller{ID: fmt.Sprintf("anon:198.51.100.%d", i), Tier: models.TierFree}, now))
	}
	exhausted := models.Caller{ID: "u1", Tier: models.TierFree}
	for i := 0; i < 3; i++ {
		require.True(t, limiter.AllowAt(exhausted, now))
	}
	assert.Equal(t, 101, limiter.Len())

	// one used audit refills within 8 hours, three take a day
	later := now.Add(9 * time.Hour)
	assert.True(t, limiter.AllowAt(exhausted, later))
	assert.Equal(t, 1, limiter.Len())
	assert.False(t, limiter.AllowAt(exhausted, later), "eviction keeps partly used quotas")
}
