package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vitrine/analytics"
	"vitrine/backup"
	"vitrine/cache"
	"vitrine/content"
	"vitrine/models"
)

const (
	sessionUserKey     = "user_id"
	sessionLastSeenKey = "last_seen"

	DefaultSessionTimeout = 30 * time.Minute
)

// BackupStore keeps exported snapshots outside the primary backend.
type BackupStore interface {
	Upload(ctx context.Context, data []byte, at time.Time) (backup.Object, error)
	List(ctx context.Context, limit int) ([]backup.Object, error)
	Download(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

type AdminModule struct {
	db             *gorm.DB
	store          *content.Store
	analytics      *analytics.AnalyticsModule
	backups        BackupStore
	cache          *cache.Cache
	limiter        *LoginLimiter
	logger         *zap.Logger
	sessionTimeout time.Duration
	now            func() time.Time
}

type Option func(*AdminModule)

func WithLogger(logger *zap.Logger) Option {
	return func(a *AdminModule) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithAnalytics(analyticsModule *analytics.AnalyticsModule) Option {
	return func(a *AdminModule) { a.analytics = analyticsModule }
}

func WithBackups(backups BackupStore) Option {
	return func(a *AdminModule) { a.backups = backups }
}

// WithCache lets the admin clear rendered blog output by hand.
func WithCache(c *cache.Cache) Option {
	return func(a *AdminModule) { a.cache = c }
}

func WithLoginLimiter(limiter *LoginLimiter) Option {
	return func(a *AdminModule) { a.limiter = limiter }
}

// WithSessionTimeout sets how long a session may stay idle.
func WithSessionTimeout(d time.Duration) Option {
	return func(a *AdminModule) {
		if d > 0 {
			a.sessionTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *AdminModule) {
		if now != nil {
			a.now = now
		}
	}
}

func NewAdminModule(db *gorm.DB, store *content.Store, opts ...Option) *AdminModule {
	a := &AdminModule{
		db:             db,
		store:          store,
		logger:         zap.NewNop(),
		sessionTimeout: DefaultSessionTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	router.POST("/admin/login", a.login)
	router.POST("/admin/logout", a.logout)
	router.GET("/admin/session", a.requireAuth, a.session)

	api := router.Group("/admin/api")
	api.Use(a.requireAuth)
	{
		api.GET("/content", a.document)

		api.GET("/projects", a.listProjects)
		api.POST("/projects", a.createProject)
		api.PUT("/projects/order", a.reorderProjects)
		api.PATCH("/projects/:id", a.updateProject)
		api.DELETE("/projects/:id", a.deleteProject)

		api.GET("/skills", a.listSkills)
		api.POST("/skills", a.createSkillCategory)
		api.DELETE("/skills/:category", a.deleteSkillCategory)
		api.POST("/skills/:category/skills", a.createSkill)
		api.PATCH("/skills/:category/skills/:id", a.updateSkill)
		api.DELETE("/skills/:category/skills/:id", a.deleteSkill)
		api.PUT("/skills/:category/skills/:id/position", a.moveSkill)
		api.PATCH("/skills/:category/index/:index", a.updateSkillAt)
		api.DELETE("/skills/:category/index/:index", a.deleteSkillAt)

		api.GET("/blog", a.listPosts)
		api.POST("/blog", a.createPost)
		api.PATCH("/blog/:id", a.updatePost)
		api.DELETE("/blog/:id", a.deletePost)

		api.GET("/pages/:name", a.page)
		api.PATCH("/pages/:name", a.updatePage)
		api.GET("/navigation", a.navigation)
		api.PUT("/navigation", a.updateNavigation)
		api.GET("/settings", a.settings)
		api.PATCH("/settings", a.updateSettings)

		api.GET("/export", a.exportContent)
		api.POST("/import", a.importContent)
		api.POST("/reset", a.resetContent)

		api.GET("/backups", a.listBackups)
		api.POST("/backups", a.createBackup)
		api.POST("/backups/:name/restore", a.restoreBackup)
		api.DELETE("/backups/:name", a.deleteBackup)

		api.GET("/visits", a.visits)
		api.POST("/cache/clear", a.clearCache)
	}
}

// requireAuth rejects requests without a session and expires sessions idle
// for longer than the session timeout. Every accepted request refreshes the
// last-seen time.
func (a *AdminModule) requireAuth(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get(sessionUserKey)

	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		c.Abort()
		return
	}

	now := a.now()
	lastSeen, _ := session.Get(sessionLastSeenKey).(int64)
	if now.Sub(time.Unix(lastSeen, 0)) > a.sessionTimeout {
		session.Clear()
		session.Save()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		c.Abort()
		return
	}

	session.Set(sessionLastSeenKey, now.Unix())
	if err := session.Save(); err != nil {
		a.logger.Warn("failed to refresh session", zap.Error(err))
	}

	c.Set(sessionUserKey, userID)
	c.Next()
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *AdminModule) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	ctx := c.Request.Context()
	ip := c.ClientIP()
	logger := a.logger.With(zap.String("username", req.Username), zap.String("ip", ip))

	if a.limiter.Blocked(ctx, ip, req.Username) {
		logger.Warn("login blocked: too many attempts")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later"})
		return
	}

	var user models.AdminUser
	err := a.db.Where("username = ?", req.Username).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("login query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err != nil || !checkPasswordHash(req.Password, user.PasswordHash) {
		if _, err := a.limiter.Fail(ctx, ip, req.Username); err != nil {
			logger.Warn("failed to record login attempt", zap.Error(err))
		}
		logger.Info("login failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	a.limiter.Reset(ctx, ip, req.Username)

	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserKey, user.ID)
	session.Set(sessionLastSeenKey, a.now().Unix())
	if err := session.Save(); err != nil {
		logger.Error("failed to save session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
		return
	}

	logger.Info("admin logged in")
	c.JSON(http.StatusOK, gin.H{"username": user.Username})
}

func (a *AdminModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	session.Save()

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (a *AdminModule) session(c *gin.Context) {
	userID, _ := c.Get(sessionUserKey)

	var user models.AdminUser
	if err := a.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":  user.Username,
		"expiresAt": a.now().Add(a.sessionTimeout).UTC(),
	})
}

// EnsureAdminUser creates the admin account, or updates its password hash
// when the configured password changed.
func EnsureAdminUser(db *gorm.DB, username, password string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if username == "" || password == "" {
		return errors.New("admin username and password are required")
	}

	var user models.AdminUser
	err := db.Where("username = ?", username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := hashPassword(password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		user = models.AdminUser{Username: username, PasswordHash: hash}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		logger.Info("admin user created", zap.String("username", username))
	case err != nil:
		return fmt.Errorf("find admin user: %w", err)
	case !checkPasswordHash(password, user.PasswordHash):
		hash, err := hashPassword(password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		if err := db.Model(&user).Update("password_hash", hash).Error; err != nil {
			return fmt.Errorf("update admin password: %w", err)
		}
		logger.Info("admin password updated", zap.String("username", username))
	}
	return nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
