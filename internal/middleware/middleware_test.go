package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/ptpcell/placement-backend/internal/config"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*service.AuthService, *redis.Client, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: 4}
	return service.NewAuthService(cfg, rdb), rdb, mr
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func TestRequireAdminJWT(t *testing.T) {
	auth, _, _ := setup(t)
	r := gin.New()
	r.GET("/x", RequireAdminJWT(auth), ok)

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "garbage").Code)

	studentToken, err := auth.GenerateStudentToken(context.Background(), &model.Student{ID: 7, Email: "s@x.edu"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, studentToken).Code)

	adminToken, err := auth.GenerateAdminToken(&model.Admin{ID: 1, Email: "a@x.edu", RoleName: model.RoleAdmin}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(r, adminToken).Code)
}

func TestRequirePermissionAndRole(t *testing.T) {
	auth, _, _ := setup(t)
	r := gin.New()
	admin := r.Group("/", RequireAdminJWT(auth))
	admin.GET("/x", RequirePermission(model.PermissionQuizControl), ok)
	admin.GET("/y", RequireRole(model.RoleAdmin), ok)

	coordinator, err := auth.GenerateAdminToken(
		&model.Admin{ID: 2, RoleName: model.RoleCoordinator},
		[]string{string(model.PermissionEventsRead)},
	)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, coordinator).Code)

	req := httptest.NewRequest(http.MethodGet, "/y", nil)
	req.Header.Set("Authorization", "Bearer "+coordinator)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	controller, err := auth.GenerateAdminToken(
		&model.Admin{ID: 1, RoleName: model.RoleAdmin},
		[]string{string(model.PermissionQuizControl)},
	)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(r, controller).Code)
}

func TestRequireActiveSession_NewestLoginWins(t *testing.T) {
	auth, _, _ := setup(t)
	r := gin.New()
	r.GET("/x", RequireStudentJWT(auth), RequireActiveSession(auth), ok)

	st := &model.Student{ID: 9, Email: "s@x.edu"}
	first, err := auth.GenerateStudentToken(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(r, first).Code)

	second, err := auth.GenerateStudentToken(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, first).Code)
	assert.Equal(t, http.StatusOK, do(r, second).Code)

	require.NoError(t, auth.ResetStudentSession(context.Background(), st.ID))
	assert.Equal(t, http.StatusUnauthorized, do(r, second).Code)
}

func TestRequireActiveSession_StoreFailure(t *testing.T) {
	auth, _, mr := setup(t)
	r := gin.New()
	r.GET("/x", RequireStudentJWT(auth), RequireActiveSession(auth), ok)

	token, err := auth.GenerateStudentToken(context.Background(), &model.Student{ID: 3, Email: "c@x.edu"})
	require.NoError(t, err)

	mr.SetError("ERR store offline")
	assert.Equal(t, http.StatusServiceUnavailable, do(r, token).Code)

	mr.SetError("")
	assert.Equal(t, http.StatusOK, do(r, token).Code)
}

func TestRateLimiter(t *testing.T) {
	_, rdb, mr := setup(t)
	rl := NewRateLimiter(rdb, "poll", 2, time.Minute, ByClientIP)
	rl.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	r := gin.New()
	r.GET("/x", rl.Middleware(), ok)

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusOK, do(r, "").Code)
	rec := do(r, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// Next window starts fresh.
	rl.now = func() time.Time { return time.Unix(1_700_000_000, 0).Add(time.Minute) }
	assert.Equal(t, http.StatusOK, do(r, "").Code)

	assert.Len(t, mr.Keys(), 2)
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.GET("/x", NoStore(), ok)
	rec := do(r, "")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
