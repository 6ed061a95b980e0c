package security

import (
	"language_gems_backend/internal/config"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var defaultAllowedHeaders = []string{
	"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token",
	"Authorization", "accept", "origin", "Cache-Control", "X-Requested-With",
}

var defaultAllowedMethods = []string{"POST", "OPTIONS", "GET", "PUT", "DELETE", "PATCH"}

// CORS 中间件 仅允许白名单中的Origin，支持Credentials。
// 允许的请求头和方法可在配置里覆盖，默认值覆盖本项目全部接口。
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	originSet := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		originSet[o] = true
	}

	allowHeaders := strings.Join(defaultAllowedHeaders, ", ")
	if len(cfg.AllowedHeaders) > 0 {
		allowHeaders = strings.Join(cfg.AllowedHeaders, ", ")
	}
	allowMethods := strings.Join(defaultAllowedMethods, ", ")
	if len(cfg.AllowedMethods) > 0 {
		allowMethods = strings.Join(cfg.AllowedMethods, ", ")
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && originSet[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		c.Writer.Header().Set("Access-Control-Allow-Methods", allowMethods)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Secure 中间件
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 防止MIME嗅探
		c.Header("X-Content-Type-Options", "nosniff")
		// 防止点击劫持
		c.Header("X-Frame-Options", "DENY")
		// XSS保护
		c.Header("X-XSS-Protection", "1; mode=block")
		// HSTS
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

// visitor 包装限流器和最后活跃时间，用于定期清理
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 限流中间件，自动清理过期条目。
// 带 Authorization 的请求按凭证限流，未登录请求退回按 IP；
// 同一教室的学生共享出口 IP，按 IP 限流会互相挤占配额。
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	store := make(map[string]*visitor)
	var mu sync.Mutex

	go func() {
		expiry := window * 3
		if expiry < time.Minute {
			expiry = time.Minute
		}
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			for key, v := range store {
				if time.Since(v.lastSeen) > expiry {
					delete(store, key)
				}
			}
			mu.Unlock()
		}
	}()

	r := rate.Every(window / time.Duration(maxRequests))

	return func(c *gin.Context) {
		key := c.ClientIP()
		if auth := c.GetHeader("Authorization"); auth != "" {
			key = strings.TrimPrefix(auth, "Bearer ")
		}

		mu.Lock()
		v, exists := store[key]
		if !exists {
			v = &visitor{
				limiter: rate.NewLimiter(r, maxRequests),
			}
			store[key] = v
		}
		v.lastSeen = time.Now()
		mu.Unlock()

		if !v.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
