package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Meta    struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

type tokenResolver map[string]*entity.User

func (r tokenResolver) ResolveUser(_ context.Context, token string) (*entity.User, error) {
	user, ok := r[token]
	if !ok {
		return nil, apperror.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, apperror.ErrInactiveUser
	}
	return user, nil
}

func TestAuthMiddleware(t *testing.T) {
	admin := &entity.User{ID: uuid.New(), Username: "admin", IsActive: true, IsSuperuser: true}
	clerk := &entity.User{ID: uuid.New(), Username: "clerk", IsActive: true}
	gone := &entity.User{ID: uuid.New(), Username: "gone"}
	resolver := tokenResolver{"admin-token": admin, "clerk-token": clerk, "gone-token": gone}

	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", AuthMiddleware(resolver), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})
	r.GET("/optional", OptionalAuthMiddleware(resolver), func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			c.String(http.StatusOK, user.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"no header", "/me", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized, ""},
		{"unknown token", "/me", "Bearer nope", http.StatusUnauthorized, ""},
		{"inactive user", "/me", "Bearer gone-token", http.StatusUnauthorized, ""},
		{"valid token", "/me", "Bearer clerk-token", http.StatusOK, "clerk"},
		{"lowercase scheme", "/me", "bearer clerk-token", http.StatusOK, "clerk"},
		{"optional anonymous", "/optional", "", http.StatusOK, "anonymous"},
		{"optional bad token", "/optional", "Bearer nope", http.StatusOK, "anonymous"},
		{"optional valid", "/optional", "Bearer admin-token", http.StatusOK, "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
				assert.False(t, decode(t, w).Success)
			}
		})
	}
}

type memoryIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func newMemoryIdempotencyRepo() *memoryIdempotencyRepo {
	return &memoryIdempotencyRepo{keys: map[string]*entity.IdempotencyKey{}}
}

func (m *memoryIdempotencyRepo) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[userID.String()+"/"+key], nil
}

func (m *memoryIdempotencyRepo) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[ikey.UserID.String()+"/"+ikey.Key] = ikey
	return nil
}

func (m *memoryIdempotencyRepo) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}

func TestIdempotencyReplaysSuccessfulResponse(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	user := &entity.User{ID: uuid.New(), IsActive: true}

	calls := 0
	r := gin.New()
	r.POST("/receipts",
		func(c *gin.Context) { c.Set(UserKey, user) },
		Idempotency(IdempotencyConfig{Repo: repo}),
		func(c *gin.Context) {
			calls++
			if c.Query("fail") == "1" {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false})
				return
			}
			c.JSON(http.StatusCreated, gin.H{"success": true, "call": calls})
		},
	)

	post := func(key, body, query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/receipts"+query, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := post("k1", `{"customer_name":"Ana"}`, "")
	require.Equal(t, http.StatusCreated, first.Code)

	replay := post("k1", `{"customer_name":"Ana"}`, "")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, 1, calls)

	mismatch := post("k1", `{"customer_name":"Bruno"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, mismatch.Code)
	assert.Equal(t, 1, calls)

	// failures are not stored, so the same key can be retried
	failed := post("k2", `{}`, "?fail=1")
	assert.Equal(t, http.StatusUnprocessableEntity, failed.Code)
	retried := post("k2", `{}`, "")
	assert.Equal(t, http.StatusCreated, retried.Code)
	assert.Equal(t, 3, calls)

	post("", `{}`, "")
	post("", `{}`, "")
	assert.Equal(t, 5, calls)

	tooLong := post(strings.Repeat("x", 256), `{}`, "")
	assert.Equal(t, http.StatusBadRequest, tooLong.Code)
}

func TestIdempotencyIgnoresExpiredKeys(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	user := &entity.User{ID: uuid.New(), IsActive: true}
	repo.keys[user.ID.String()+"/old"] = &entity.IdempotencyKey{
		Key:          "old",
		UserID:       user.ID,
		ResponseCode: http.StatusCreated,
		ResponseBody: `{"stale":true}`,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	r := gin.New()
	r.POST("/receipts",
		func(c *gin.Context) { c.Set(UserKey, user) },
		Idempotency(IdempotencyConfig{Repo: repo}),
		func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"fresh": true}) },
	)

	req := httptest.NewRequest(http.MethodPost, "/receipts", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "old")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"fresh":true}`, w.Body.String())
	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))
}

func TestRateLimiterPerUser(t *testing.T) {
	rl := NewUserRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2})
	defer rl.Stop()

	users := map[string]*entity.User{
		"a": {ID: uuid.New()},
		"b": {ID: uuid.New()},
	}
	r := gin.New()
	r.GET("/ping",
		func(c *gin.Context) {
			if u, ok := users[c.Query("u")]; ok {
				c.Set(UserKey, u)
			}
		},
		rl.Middleware(),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	get := func(u string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?u="+u, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("a"))
	assert.Equal(t, http.StatusOK, get("a"))
	assert.Equal(t, http.StatusTooManyRequests, get("a"))
	assert.Equal(t, http.StatusOK, get("b"))
	assert.Equal(t, http.StatusOK, get(""))
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "Internal server error", env.Message)
	assert.Equal(t, "req-123", env.Meta.RequestID)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestRequestIDIsGeneratedAndEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), LoggerMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	id := w.Header().Get("X-Request-ID")
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
}
