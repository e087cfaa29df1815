package blog

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"vitrine/analytics"
	"vitrine/cache"
	"vitrine/content"
	"vitrine/models"
)

type BlogModule struct {
	store     *content.Store
	cache     *cache.Cache
	analytics *analytics.AnalyticsModule
	logger    *zap.Logger
}

// markdown renderer configured with Goldmark and useful extensions
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(), // posts are written by the site owner
	),
)

// NewBlogModule serves published posts. cacheStore and analyticsModule may
// be nil.
func NewBlogModule(store *content.Store, cacheStore *cache.Cache, analyticsModule *analytics.AnalyticsModule, logger *zap.Logger) *BlogModule {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlogModule{
		store:     store,
		cache:     cacheStore,
		analytics: analyticsModule,
		logger:    logger,
	}
}

func (b *BlogModule) RegisterRoutes(router *gin.Engine) {
	list := []gin.HandlerFunc{b.index}
	if b.cache != nil {
		list = append([]gin.HandlerFunc{b.cache.Middleware()}, list...)
	}

	blogGroup := router.Group("/api/blog")
	{
		blogGroup.GET("", list...)
		blogGroup.GET("/tags", b.tags)
		blogGroup.GET("/:id", b.analytics.Middleware(analytics.ResourcePost, "id"), b.post)
	}
}

// postResponse is a published post with its markdown rendered.
type postResponse struct {
	models.BlogPost
	ContentHTML string `json:"contentHtml"`
}

func (b *BlogModule) index(c *gin.Context) {
	tag := strings.TrimSpace(c.Query("tag"))
	category := strings.TrimSpace(c.Query("category"))

	posts := make([]models.BlogPost, 0)
	for _, post := range b.store.PublishedPosts() {
		if tag != "" && !hasTag(post.Tags, tag) {
			continue
		}
		if category != "" && !strings.EqualFold(post.Category, category) {
			continue
		}
		posts = append(posts, post)
	}

	c.JSON(http.StatusOK, posts)
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

type tagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// tags lists the tags used by published posts, most used first.
func (b *BlogModule) tags(c *gin.Context) {
	counts := map[string]int{}
	for _, post := range b.store.PublishedPosts() {
		for _, tag := range post.Tags {
			counts[strings.ToLower(tag)]++
		}
	}

	out := make([]tagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, tagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})

	c.JSON(http.StatusOK, out)
}

func (b *BlogModule) post(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	post, ok := b.store.BlogPost(id)
	if !ok || post.Status != models.PostPublished {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	c.JSON(http.StatusOK, postResponse{
		BlogPost:    post,
		ContentHTML: b.renderPost(post),
	})
}

// renderPost renders through the cache. Keys include the post's update time
// so an edited post never hits a stale entry.
func (b *BlogModule) renderPost(post models.BlogPost) string {
	if b.cache == nil {
		return renderMarkdown(post.Content)
	}

	key := fmt.Sprintf("post-%d-%d", post.ID, post.UpdatedAt.UnixNano())
	if cached, ok := b.cache.Read(key); ok {
		return string(cached)
	}

	html := renderMarkdown(post.Content)
	if err := b.cache.Write(key, []byte(html)); err != nil {
		b.logger.Warn("failed to cache rendered post", zap.Int64("id", post.ID), zap.Error(err))
	}
	return html
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// fall back to the raw text rather than failing the request
		return content
	}
	return buf.String()
}
