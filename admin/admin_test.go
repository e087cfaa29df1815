package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vitrine/content"
	"vitrine/kv"
	"vitrine/models"
)

const (
	testUsername = "admin"
	testPassword = "correct-horse"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&models.AdminUser{})
	return db
}

func setupTestStore(t *testing.T) *content.Store {
	t.Helper()
	store, err := content.New(kv.NewMemory())
	require.NoError(t, err)
	return store
}

func setupTestRouter(adminModule *AdminModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("secret"))
	router.Use(sessions.Sessions("test-session", store))
	adminModule.RegisterRoutes(router)
	return router
}

// setupTestAdmin returns a router with a seeded admin account.
func setupTestAdmin(t *testing.T, opts ...Option) (*gin.Engine, *content.Store) {
	t.Helper()
	db := setupTestDB()
	require.NoError(t, EnsureAdminUser(db, testUsername, testPassword, nil))
	store := setupTestStore(t)
	return setupTestRouter(NewAdminModule(db, store, opts...)), store
}

func doRequest(router *gin.Engine, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router *gin.Engine) []*http.Cookie {
	t.Helper()
	w := doRequest(router, "POST", "/admin/login",
		`{"username":"`+testUsername+`","password":"`+testPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestRequireAuth_Unauthorized(t *testing.T) {
	router, _ := setupTestAdmin(t)

	for _, path := range []string{"/admin/api/projects", "/admin/api/export", "/admin/session"} {
		w := doRequest(router, "GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Contains(t, w.Body.String(), "authentication required")
	}

	w := doRequest(router, "POST", "/admin/api/reset", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_Success(t *testing.T) {
	router, _ := setupTestAdmin(t)
	cookies := login(t, router)

	w := doRequest(router, "GET", "/admin/session", "", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"admin"`)

	w = doRequest(router, "GET", "/admin/api/projects", "", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_Rejected(t *testing.T) {
	router, _ := setupTestAdmin(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"root","password":"` + testPassword + `"}`, http.StatusUnauthorized},
		{"missing password", `{"username":"admin"}`, http.StatusBadRequest},
		{"not json", `username=admin`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "POST", "/admin/login", tt.body, nil)
			assert.Equal(t, tt.code, w.Code)
			assert.Empty(t, w.Result().Cookies())
		})
	}
}

func TestLogout(t *testing.T) {
	router, _ := setupTestAdmin(t)
	login(t, router)

	w := doRequest(router, "POST", "/admin/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := w.Result().Cookies()
	require.NotEmpty(t, cleared)
	w = doRequest(router, "GET", "/admin/api/projects", "", cleared)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSession_InactivityTimeout(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	router, _ := setupTestAdmin(t, WithClock(func() time.Time { return now }))
	cookies := login(t, router)

	now = now.Add(DefaultSessionTimeout + time.Minute)

	w := doRequest(router, "GET", "/admin/api/projects", "", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "session expired")
}

func TestSession_RefreshedByActivity(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	router, _ := setupTestAdmin(t, WithClock(func() time.Time { return now }))
	cookies := login(t, router)

	now = now.Add(20 * time.Minute)
	w := doRequest(router, "GET", "/admin/api/projects", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	refreshed := w.Result().Cookies()
	require.NotEmpty(t, refreshed)

	now = now.Add(20 * time.Minute)
	w = doRequest(router, "GET", "/admin/api/projects", "", refreshed)
	assert.Equal(t, http.StatusOK, w.Code)

	// the original cookie still carries the login time
	w = doRequest(router, "GET", "/admin/api/projects", "", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSession_CustomTimeout(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	router, _ := setupTestAdmin(t,
		WithClock(func() time.Time { return now }),
		WithSessionTimeout(5*time.Minute),
	)
	cookies := login(t, router)

	now = now.Add(6 * time.Minute)
	w := doRequest(router, "GET", "/admin/api/projects", "", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeCounter struct {
	counts  map[string]int64
	expires map[string]time.Duration
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCounter) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.counts[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(strconv.FormatInt(v, 10), nil)
}

func (f *fakeCounter) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.counts, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestLogin_RateLimited(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewLoginLimiter(counter, "vitrine:", 2, 15*time.Minute)
	router, _ := setupTestAdmin(t, WithLoginLimiter(limiter))

	for i := 0; i < 2; i++ {
		w := doRequest(router, "POST", "/admin/login", `{"username":"admin","password":"bad"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := doRequest(router, "POST", "/admin/login",
		`{"username":"admin","password":"`+testPassword+`"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	for _, ttl := range counter.expires {
		assert.Equal(t, 15*time.Minute, ttl)
	}
}

func TestLogin_SuccessResetsAttempts(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewLoginLimiter(counter, "vitrine:", 3, time.Minute)
	router, _ := setupTestAdmin(t, WithLoginLimiter(limiter))

	doRequest(router, "POST", "/admin/login", `{"username":"admin","password":"bad"}`, nil)
	require.Len(t, counter.counts, 1)

	login(t, router)
	assert.Empty(t, counter.counts)
}

func TestEnsureAdminUser(t *testing.T) {
	db := setupTestDB()

	require.NoError(t, EnsureAdminUser(db, "admin", "first", nil))
	require.NoError(t, EnsureAdminUser(db, "admin", "first", nil))

	var users []models.AdminUser
	db.Find(&users)
	require.Len(t, users, 1)
	assert.True(t, checkPasswordHash("first", users[0].PasswordHash))

	require.NoError(t, EnsureAdminUser(db, "admin", "second", nil))
	var user models.AdminUser
	db.First(&user)
	assert.True(t, checkPasswordHash("second", user.PasswordHash))
	assert.False(t, checkPasswordHash("first", user.PasswordHash))

	assert.Error(t, EnsureAdminUser(db, "admin", "", nil))
}

func TestHashPassword(t *testing.T) {
	password := "testpassword123"
	hash, err := hashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "testpassword123"
	hash, _ := hashPassword(password)

	assert.True(t, checkPasswordHash(password, hash))
	assert.False(t, checkPasswordHash("wrongpassword", hash))
}
