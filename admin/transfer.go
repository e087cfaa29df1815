package admin

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vitrine/analytics"
	"vitrine/backup"
)

const maxImportSize = 10 << 20

func (a *AdminModule) exportContent(c *gin.Context) {
	data, err := a.store.Export()
	if err != nil {
		a.logger.Error("export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export content"})
		return
	}

	filename := fmt.Sprintf("portfolio-backup-%s.json", a.now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json", data)
}

// importContent accepts either a multipart upload in the "file" field or
// the JSON document as the raw request body.
func (a *AdminModule) importContent(c *gin.Context) {
	data, err := readImport(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.store.Import(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup file"})
		return
	}

	a.logger.Info("content imported", zap.Int("bytes", len(data)))
	c.JSON(http.StatusOK, gin.H{"message": "content imported", "revision": a.store.Revision()})
}

func readImport(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, errors.New("file is required")
		}
		f, err := header.Open()
		if err != nil {
			return nil, errors.New("could not read file")
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, errors.New("could not read request body")
	}
	if len(data) == 0 {
		return nil, errors.New("request body is empty")
	}
	return data, nil
}

func (a *AdminModule) resetContent(c *gin.Context) {
	a.store.Reset()
	a.logger.Info("content reset to defaults")
	c.JSON(http.StatusOK, gin.H{"message": "content reset", "revision": a.store.Revision()})
}

func (a *AdminModule) backupsEnabled(c *gin.Context) bool {
	if a.backups == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backups are not configured"})
		return false
	}
	return true
}

func (a *AdminModule) listBackups(c *gin.Context) {
	if !a.backupsEnabled(c) {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	objects, err := a.backups.List(c.Request.Context(), limit)
	if err != nil {
		a.logger.Error("list backups failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not list backups"})
		return
	}

	c.JSON(http.StatusOK, objects)
}

func (a *AdminModule) createBackup(c *gin.Context) {
	if !a.backupsEnabled(c) {
		return
	}

	data, err := a.store.Export()
	if err != nil {
		a.logger.Error("export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export content"})
		return
	}

	obj, err := a.backups.Upload(c.Request.Context(), data, a.now())
	if err != nil {
		a.logger.Error("upload backup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not upload backup"})
		return
	}

	a.logger.Info("backup created", zap.String("name", obj.Name))
	c.JSON(http.StatusCreated, obj)
}

func (a *AdminModule) restoreBackup(c *gin.Context) {
	if !a.backupsEnabled(c) {
		return
	}

	name := c.Param("name")
	data, err := a.backups.Download(c.Request.Context(), name)
	switch {
	case errors.Is(err, backup.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup name"})
		return
	case errors.Is(err, backup.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "backup not found"})
		return
	case err != nil:
		a.logger.Error("download backup failed", zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not download backup"})
		return
	}

	if err := a.store.Import(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup file"})
		return
	}

	a.logger.Info("backup restored", zap.String("name", name))
	c.JSON(http.StatusOK, gin.H{"message": "backup restored", "revision": a.store.Revision()})
}

func (a *AdminModule) deleteBackup(c *gin.Context) {
	if !a.backupsEnabled(c) {
		return
	}

	name := c.Param("name")
	err := a.backups.Delete(c.Request.Context(), name)
	switch {
	case errors.Is(err, backup.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid backup name"})
		return
	case err != nil:
		a.logger.Error("delete backup failed", zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not delete backup"})
		return
	}

	a.logger.Info("backup deleted", zap.String("name", name))
	c.JSON(http.StatusOK, gin.H{"message": "backup deleted"})
}

type resourceVisits struct {
	analytics.ResourceVisits
	Title string `json:"title"`
}

func (a *AdminModule) visits(c *gin.Context) {
	if a.analytics == nil {
		c.JSON(http.StatusOK, gin.H{"analyticsEnabled": false})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "15"))
	if err != nil || days <= 0 || days > 365 {
		days = 15
	}

	c.JSON(http.StatusOK, gin.H{
		"analyticsEnabled": true,
		"visitsByDay":      a.analytics.VisitsByDay(days),
		"topPosts":         a.titled(a.analytics.TopResources(analytics.ResourcePost, days, 10)),
		"topProjects":      a.titled(a.analytics.TopResources(analytics.ResourceProject, days, 10)),
	})
}

func (a *AdminModule) titled(list []analytics.ResourceVisits) []resourceVisits {
	out := make([]resourceVisits, len(list))
	for i, v := range list {
		out[i] = resourceVisits{ResourceVisits: v, Title: "(deleted)"}
		id, err := strconv.ParseInt(v.ResourceID, 10, 64)
		if err != nil {
			continue
		}
		switch v.Resource {
		case analytics.ResourcePost:
			if post, ok := a.store.BlogPost(id); ok {
				out[i].Title = post.Title
			}
		case analytics.ResourceProject:
			if project, ok := a.store.Project(id); ok {
				out[i].Title = project.Title
			}
		}
	}
	return out
}

func (a *AdminModule) clearCache(c *gin.Context) {
	if a.cache == nil {
		c.JSON(http.StatusOK, gin.H{"message": "cache disabled"})
		return
	}

	if err := a.cache.ClearAll(); err != nil {
		a.logger.Error("failed to clear cache", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear cache"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cache cleared"})
}
