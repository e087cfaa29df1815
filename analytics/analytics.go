package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ResourcePage    = "page"
	ResourceProject = "project"
	ResourcePost    = "post"

	visitorCookie  = "vitrine_visitor_id"
	throttleWindow = 30 * time.Minute
)

// VisitEvent is one recorded visit to a public resource.
type VisitEvent struct {
	ID         uint      `gorm:"primary_key;autoIncrement" json:"id"`
	Resource   string    `gorm:"not null;index" json:"resource"`
	ResourceID string    `gorm:"not null;index" json:"resourceId"`
	CookieID   string    `gorm:"not null;index" json:"-"`
	Event      string    `gorm:"not null;default:'visit'" json:"event"`
	IP         string    `gorm:"not null" json:"-"`
	Language   *string   `json:"language,omitempty"`
	Browser    *string   `json:"browser,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

type AnalyticsModule struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewAnalyticsModule returns nil when db is nil; every method on a nil
// module is a no-op.
func NewAnalyticsModule(db *gorm.DB, logger *zap.Logger) *AnalyticsModule {
	if logger == nil {
		logger = zap.NewNop()
	}
	if db == nil {
		logger.Info("analytics database not configured, analytics disabled")
		return nil
	}

	if err := db.AutoMigrate(&VisitEvent{}); err != nil {
		logger.Error("error migrating visit_events table", zap.Error(err))
		return nil
	}

	logger.Info("analytics module initialized")
	return &AnalyticsModule{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TrackVisit records a visit unless the same visitor saw the same resource
// within the last 30 minutes.
func (a *AnalyticsModule) TrackVisit(c *gin.Context, resource, resourceID string) {
	if a == nil || a.db == nil {
		return
	}

	a.track(c, a.getOrCreateCookieID(c), resource, resourceID)
}

func (a *AnalyticsModule) track(c *gin.Context, cookieID, resource, resourceID string) {
	now := a.now()

	var recent VisitEvent
	err := a.db.
		Where("cookie_id = ? AND resource = ? AND resource_id = ? AND created_at > ?",
			cookieID, resource, resourceID, now.Add(-throttleWindow)).
		First(&recent).Error
	if err == nil {
		return
	}

	event := VisitEvent{
		Resource:   resource,
		ResourceID: resourceID,
		CookieID:   cookieID,
		Event:      "visit",
		IP:         getClientIP(c),
		Language:   extractLanguage(c.GetHeader("Accept-Language")),
		Browser:    extractBrowser(c.Request.UserAgent()),
		CreatedAt:  now,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.db.Create(&event).Error; err != nil {
			a.logger.Warn("error saving visit event", zap.Error(err))
		}
	}()
}

// Middleware tracks a visit to the resource named by the route parameter
// once the handler succeeds. An empty param tracks the resource kind itself.
func (a *AnalyticsModule) Middleware(resource, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a == nil || a.db == nil {
			c.Next()
			return
		}
		// the cookie must be set before the handler writes the body
		cookieID := a.getOrCreateCookieID(c)
		c.Next()
		if c.Writer.Status() != http.StatusOK {
			return
		}
		id := resource
		if param != "" {
			id = c.Param(param)
		}
		a.track(c, cookieID, resource, id)
	}
}

// Flush waits for pending visit writes.
func (a *AnalyticsModule) Flush() {
	if a == nil {
		return
	}
	a.wg.Wait()
}

func (a *AnalyticsModule) getOrCreateCookieID(c *gin.Context) string {
	if cookie, err := c.Cookie(visitorCookie); err == nil && cookie != "" {
		return cookie
	}

	data := a.now().String() + c.ClientIP() + c.Request.UserAgent()
	hash := sha256.Sum256([]byte(data))
	cookieID := hex.EncodeToString(hash[:])

	c.SetCookie(visitorCookie, cookieID, 60*60*24*365*2, "/", "", false, true)
	return cookieID
}

// getClientIP prefers proxy headers over the socket address.
func getClientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func extractBrowser(userAgent string) *string {
	if userAgent == "" {
		return nil
	}

	ua := strings.ToLower(userAgent)
	var browser string

	// more specific agents first
	switch {
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "msie") || strings.Contains(ua, "trident"):
		browser = "Internet Explorer"
	default:
		browser = "Other"
	}

	return &browser
}

// extractLanguage returns the first tag of an Accept-Language header.
func extractLanguage(acceptLang string) *string {
	if acceptLang == "" {
		return nil
	}
	lang := strings.TrimSpace(strings.Split(acceptLang, ",")[0])
	lang = strings.Split(lang, ";")[0]
	return &lang
}

type DayVisits struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type ResourceVisits struct {
	Resource   string `json:"resource"`
	ResourceID string `json:"resourceId"`
	Count      int64  `json:"count"`
}

// VisitCount returns the total visits recorded for one resource.
func (a *AnalyticsModule) VisitCount(resource, resourceID string) int64 {
	if a == nil || a.db == nil {
		return 0
	}

	var count int64
	a.db.Model(&VisitEvent{}).
		Where("resource = ? AND resource_id = ?", resource, resourceID).
		Count(&count)
	return count
}

// VisitsByDay returns one entry per day for the last n days, oldest first,
// including days without visits.
func (a *AnalyticsModule) VisitsByDay(days int) []DayVisits {
	if a == nil || a.db == nil || days <= 0 {
		return []DayVisits{}
	}

	now := a.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	var results []DayVisits
	a.db.Model(&VisitEvent{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", start).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results)

	counts := make(map[string]int64, len(results))
	for _, r := range results {
		counts[r.Date] = r.Count
	}

	out := make([]DayVisits, days)
	for i := range out {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		out[i] = DayVisits{Date: date, Count: counts[date]}
	}
	return out
}

// TopResources returns the most visited resources of a kind over the last
// n days. An empty resource kind ranks across all kinds.
func (a *AnalyticsModule) TopResources(resource string, days, limit int) []ResourceVisits {
	if a == nil || a.db == nil {
		return []ResourceVisits{}
	}

	query := a.db.Model(&VisitEvent{}).
		Select("resource, resource_id, COUNT(*) as count").
		Where("created_at >= ?", a.now().AddDate(0, 0, -days))
	if resource != "" {
		query = query.Where("resource = ?", resource)
	}

	results := []ResourceVisits{}
	query.Group("resource, resource_id").
		Order("count DESC").
		Limit(limit).
		Scan(&results)
	return results
}
