package common

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"vitrine/config"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LogConfig{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = NewLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/api/projects/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req, _ := http.NewRequest("GET", "/api/projects/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "request completed", entry.Message)
	assert.Equal(t, "/api/projects/:id", entry.ContextMap()["path"])
	assert.Equal(t, int64(http.StatusNoContent), entry.ContextMap()["status"])
}

func TestConnectDb(t *testing.T) {
	db, err := ConnectDb(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, db)

	_, err = ConnectDb("", zap.NewNop())
	assert.Error(t, err)

	assert.Nil(t, ConnectAnalyticsDb("", zap.NewNop()))
}
