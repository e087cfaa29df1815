package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vitrine/admin"
	"vitrine/analytics"
	"vitrine/backup"
	"vitrine/blog"
	"vitrine/cache"
	"vitrine/common"
	"vitrine/config"
	"vitrine/email"
	"vitrine/metrics"
	"vitrine/site"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP server",
	Long: `Starts the public API, the admin API and the metrics endpoint. The server
shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appConfig.ValidateServer(); err != nil {
			return err
		}

		res, err := openResources(appConfig, logger)
		if err != nil {
			return err
		}
		defer res.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		router, cleanup, err := newRouter(ctx, appConfig, res, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := &http.Server{
			Addr:              appConfig.Server.Address(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newRouter wires every module onto a gin engine. The returned cleanup
// removes store subscriptions and flushes pending analytics writes.
func newRouter(ctx context.Context, cfg *config.Config, res *resources, logger *zap.Logger) (*gin.Engine, func(), error) {
	if err := admin.EnsureAdminUser(res.db, cfg.Admin.Username, cfg.Admin.Password, logger); err != nil {
		return nil, nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), common.RequestLogger(logger.Named("http")), metrics.GinMiddleware())

	sessionStore := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Admin.SessionTimeout.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("vitrine-session", sessionStore))

	var unsubscribe []func()

	analyticsModule := analytics.NewAnalyticsModule(common.ConnectAnalyticsDb(cfg.Analytics.SQLitePath, logger), logger.Named("analytics"))

	fragmentCache := cache.New(cfg.Cache.Dir, cfg.Cache.MaxAge, logger.Named("cache"))
	if err := fragmentCache.ClearOld(); err != nil {
		logger.Warn("failed to clear old cache entries", zap.Error(err))
	}
	unsubscribe = append(unsubscribe, fragmentCache.InvalidateOn(res.store))
	unsubscribe = append(unsubscribe, metrics.TrackContent(res.store))

	adminOpts := []admin.Option{
		admin.WithLogger(logger.Named("admin")),
		admin.WithAnalytics(analyticsModule),
		admin.WithCache(fragmentCache),
		admin.WithSessionTimeout(cfg.Admin.SessionTimeout),
	}
	if res.redis != nil {
		adminOpts = append(adminOpts, admin.WithLoginLimiter(
			admin.NewLoginLimiter(res.redis, cfg.Redis.Prefix, cfg.Admin.MaxAttempts, cfg.Admin.AttemptWindow),
		))
	}
	if cfg.MinIO.Enabled() {
		backups, err := backup.NewClient(ctx, cfg.MinIO)
		if err != nil {
			return nil, nil, err
		}
		adminOpts = append(adminOpts, admin.WithBackups(backups))
		logger.Info("object storage backups enabled", zap.String("bucket", cfg.MinIO.Bucket))
	}

	var mailer site.Mailer
	if emailService := email.NewEmailService(cfg.SMTP); emailService.Enabled() {
		mailer = emailService
	}

	admin.NewAdminModule(res.db, res.store, adminOpts...).RegisterRoutes(router)
	site.NewSiteModule(res.store, mailer, analyticsModule, cfg.Server.Domain, logger.Named("site")).RegisterRoutes(router)
	blog.NewBlogModule(res.store, fragmentCache, analyticsModule, logger.Named("blog")).RegisterRoutes(router)

	router.GET("/metrics", metrics.Handler())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "revision": res.store.Revision()})
	})

	cleanup := func() {
		for _, fn := range unsubscribe {
			fn()
		}
		analyticsModule.Flush()
	}
	return router, cleanup, nil
}
