package logger

import (
	"os"
	"strings"
	"time"

	"flashbill/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var std = logrus.New()

// Init 根据配置设置日志级别与格式
func Init(cfg config.LogConfig) {
	std.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.Format, "json") {
		std.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	std.SetLevel(level)
}

// L 返回全局 logger
func L() *logrus.Logger {
	return std
}

// WithComponent 按模块打标签
func WithComponent(name string) *logrus.Entry {
	return std.WithField("component", name)
}

// GinLogger 请求日志中间件，替代 gin.Logger
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := logrus.Fields{
			"status":  c.Writer.Status(),
			"method":  c.Request.Method,
			"path":    path,
			"ip":      c.ClientIP(),
			"latency": time.Since(start).String(),
		}
		if uid, ok := c.Get("userID"); ok {
			fields["user_id"] = uid
		}
		entry := std.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request")
		case c.Writer.Status() >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
