// Package httpserver 通过 gin 对外提供ID生成与解析接口
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "katydid-common-idgen/internal/server/http/docs"
	"katydid-common-idgen/pkg/idgen/core"
)

const (
	// APIBasePath 接口前缀
	APIBasePath = "/api/v1"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Options 服务选项
type Options struct {
	// JWTSecret 非空时，/api/v1 下除健康检查外的接口需携带 HS256 签名的 Bearer Token
	JWTSecret string

	// Logger 日志记录器，nil 时不输出日志
	Logger *zap.Logger
}

// Server ID生成HTTP服务
type Server struct {
	gen    core.IGenerator
	engine *gin.Engine
	srv    *http.Server
	logger *zap.Logger
}

// New 创建HTTP服务
func New(gen core.IGenerator, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")

	engine := gin.New()
	engine.Use(requestLogger(log), gin.Recovery())

	s := &Server{
		gen:    gen,
		engine: engine,
		srv:    &http.Server{Handler: engine, ReadHeaderTimeout: readHeaderTimeout},
		logger: log,
	}

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := engine.Group(APIBasePath)
	v1.GET("/healthz", s.handleHealth)

	api := v1.Group("")
	if opts.JWTSecret != "" {
		api.Use(jwtAuth([]byte(opts.JWTSecret), log))
	}
	api.POST("/ids", s.handleGenerate)
	api.POST("/ids/batch", s.handleGenerateBatch)
	api.GET("/ids/:id", s.handleDecode)
	api.GET("/metrics", s.handleMetrics)

	return s
}

// Handler 返回底层 http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe 监听并服务，ctx 取消后优雅关闭
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("HTTP服务已启动", zap.String("addr", lis.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(lis) }()

	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(cctx); err != nil {
			return err
		}
		s.logger.Info("HTTP服务已关闭")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestLogger 使用 zap 记录每个请求
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			log.Warn("请求处理失败", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		log.Debug("请求完成", fields...)
	}
}
