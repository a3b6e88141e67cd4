package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ServerInfo は配信サーバーの情報
type ServerInfo struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	DocRoot string `json:"doc_root"`
}

// StatusResponse はシステム状態のレスポンス
type StatusResponse struct {
	Status    string        `json:"status"`
	Server    ServerInfo    `json:"server"`
	Stats     StatsSnapshot `json:"stats"`
	Timestamp time.Time     `json:"timestamp"`
}

// AdminHandler は管理用エンドポイントの実装
type AdminHandler struct {
	server *Server
}

// HealthCheck はヘルスチェックエンドポイントの実装
func (h *AdminHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// GetStatus はシステム状態取得エンドポイントの実装
func (h *AdminHandler) GetStatus(c *gin.Context) {
	cfg := h.server.config
	c.JSON(http.StatusOK, StatusResponse{
		Status: "running",
		Server: ServerInfo{
			Host:    cfg.Server.Host,
			Port:    cfg.Server.Port,
			DocRoot: h.server.resolver.Root(),
		},
		Stats:     h.server.Stats(),
		Timestamp: time.Now(),
	})
}

// adminRouter は管理用のルートを設定する
func (s *Server) adminRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), accessLog(s.logger))

	h := &AdminHandler{server: s}
	router.GET("/health", h.HealthCheck)
	router.GET("/api/status", h.GetStatus)

	return router
}

// accessLog は管理サーバーへのアクセスを zerolog に記録するミドルウェア
func accessLog(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("管理サーバーへのアクセス")
	}
}
