// Package httpserver 只读HTTP管理面：健康检查、指标、在线终端列表。
package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	cfgpkg "github.com/suxuehui/jt808-deprecated/internal/config"
	"github.com/suxuehui/jt808-deprecated/internal/registry"
)

// Server HTTP 管理服务
type Server struct {
	srv *http.Server
}

// New 创建HTTP管理服务。metricsPath 为空或 metricsHandler 为 nil 时
// 不暴露指标端点。
func New(cfg cfgpkg.HTTPConfig, reg *registry.Registry, metricsPath string, metricsHandler http.Handler) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if metricsHandler != nil && metricsPath != "" {
		r.GET(metricsPath, gin.WrapH(metricsHandler))
	}

	api := r.Group("/api/v1")
	api.GET("/terminals", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"terminals": reg.Snapshot()})
	})

	return &Server{srv: &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}}
}

// Start 阻塞运行，直到 Shutdown 或出错
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
