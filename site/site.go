package site

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vitrine/analytics"
	"vitrine/content"
	"vitrine/email"
	"vitrine/models"
)

// Mailer delivers contact form messages.
type Mailer interface {
	Enabled() bool
	SendContactMessage(msg email.ContactMessage, siteName string) error
}

type SiteModule struct {
	store     *content.Store
	mailer    Mailer
	analytics *analytics.AnalyticsModule
	domain    string
	logger    *zap.Logger
}

// NewSiteModule serves the public read API. mailer and analyticsModule may
// be nil.
func NewSiteModule(store *content.Store, mailer Mailer, analyticsModule *analytics.AnalyticsModule, domain string, logger *zap.Logger) *SiteModule {
	if logger == nil {
		logger = zap.NewNop()
	}
	if domain == "" {
		domain = "http://localhost:8080"
	}
	return &SiteModule{
		store:     store,
		mailer:    mailer,
		analytics: analyticsModule,
		domain:    strings.TrimSuffix(domain, "/"),
		logger:    logger,
	}
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/content", s.content)
		api.GET("/projects", s.projects)
		api.GET("/projects/:id", s.analytics.Middleware(analytics.ResourceProject, "id"), s.project)
		api.GET("/skills", s.skills)
		api.GET("/navigation", s.navigation)
		api.GET("/pages/:name", s.analytics.Middleware(analytics.ResourcePage, "name"), s.page)
		api.GET("/settings", s.settings)
		api.POST("/contact", s.contact)
	}
	router.GET("/sitemap.xml", s.sitemap)
}

// content returns the whole document with drafts removed.
func (s *SiteModule) content(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.PublishedDocument())
}

func (s *SiteModule) projects(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	featured := c.Query("featured")

	projects := make([]models.Project, 0)
	for _, p := range s.store.Projects() {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if featured != "" {
			want, err := strconv.ParseBool(featured)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "featured must be true or false"})
				return
			}
			if p.Featured != want {
				continue
			}
		}
		projects = append(projects, p)
	}

	c.JSON(http.StatusOK, projects)
}

func (s *SiteModule) project(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	project, ok := s.store.Project(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *SiteModule) skills(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Skills())
}

// navigation returns only the active items, in stored order.
func (s *SiteModule) navigation(c *gin.Context) {
	items := make([]models.NavigationItem, 0)
	for _, item := range s.store.Navigation() {
		if item.Active {
			items = append(items, item)
		}
	}
	c.JSON(http.StatusOK, items)
}

func (s *SiteModule) page(c *gin.Context) {
	page, ok := s.store.Page(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *SiteModule) settings(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.SiteSettings())
}

func (s *SiteModule) contact(c *gin.Context) {
	if s.mailer == nil || !s.mailer.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "contact form is not available"})
		return
	}

	var msg email.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, a valid email and message are required"})
		return
	}

	if err := s.mailer.SendContactMessage(msg, s.store.SiteSettings().SiteName); err != nil {
		if errors.Is(err, email.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "contact form is not available"})
			return
		}
		s.logger.Error("failed to send contact message", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not send message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message sent"})
}

func (s *SiteModule) sitemap(c *gin.Context) {
	var sitemap strings.Builder
	sitemap.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sitemap.WriteString("\n")
	sitemap.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	sitemap.WriteString("\n")

	writeURL := func(path string, lastmod time.Time, changefreq, priority string) {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + html.EscapeString(s.domain+path) + "</loc>\n")
		if !lastmod.IsZero() {
			sitemap.WriteString("    <lastmod>" + lastmod.UTC().Format(time.RFC3339) + "</lastmod>\n")
		}
		sitemap.WriteString("    <changefreq>" + changefreq + "</changefreq>\n")
		sitemap.WriteString("    <priority>" + priority + "</priority>\n")
		sitemap.WriteString("  </url>\n")
	}

	for _, item := range s.store.Navigation() {
		if !item.Active || !strings.HasPrefix(item.Path, "/") {
			continue
		}
		priority := "0.8"
		if item.Path == "/" {
			priority = "1.0"
		}
		writeURL(item.Path, time.Time{}, "weekly", priority)
	}

	for _, p := range s.store.Projects() {
		writeURL(fmt.Sprintf("/projects/%d", p.ID), p.UpdatedAt, "monthly", "0.6")
	}

	for _, post := range s.store.PublishedPosts() {
		writeURL(fmt.Sprintf("/blog/%d", post.ID), post.UpdatedAt, "monthly", "0.6")
	}

	sitemap.WriteString("</urlset>\n")

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, sitemap.String())
}
