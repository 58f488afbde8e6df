package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 按 key 的冷却限流
// 同一 key 在冷却间隔内只放行一次
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
	now   func() time.Time
}

type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewCooldownLimiter 创建限流器
func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{now: time.Now}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查并记录本次执行
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	if elapsed := now.Sub(entry.lastTime); elapsed < interval {
		return CheckResult{Allowed: false, RetryAfter: interval - elapsed}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// Sweep 清理超过 maxAge 未使用的 key
func (r *CooldownLimiter) Sweep(maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge)
	removed := 0
	r.locks.Range(func(k, v interface{}) bool {
		entry := v.(*lockEntry)
		entry.mu.Lock()
		stale := entry.lastTime.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			r.locks.Delete(k)
			removed++
		}
		return true
	})
	return removed
}

// ==================== Gin 中间件 ====================

// KeyFunc 从请求中提取限流 key，返回空串表示不限流
type KeyFunc func(c *gin.Context) string

// Cooldown 冷却限流中间件，interval <= 0 时不生效
//
// 使用示例:
//
//	router.POST("/api/orders",
//	    middleware.Cooldown(limiter, "order_submit", 2*time.Second, middleware.HeaderKey("X-Client-Token")),
//	    orderCtl.CreateOrder,
//	)
func Cooldown(limiter *CooldownLimiter, scope string, interval time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if interval <= 0 {
			c.Next()
			return
		}
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}

		result := limiter.Check(scope+":"+key, interval)
		if !result.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": formatRetryMessage(result.RetryAfter),
			})
			return
		}
		c.Next()
	}
}

// HeaderKey 按请求头限流，未携带时不限流
func HeaderKey(name string) KeyFunc {
	return func(c *gin.Context) string {
		return c.GetHeader(name)
	}
}

// ParamKey 按路径参数限流
func ParamKey(name string) KeyFunc {
	return func(c *gin.Context) string {
		return c.Param(name)
	}
}

// formatRetryMessage 格式化重试提示
func formatRetryMessage(d time.Duration) string {
	if d < time.Second {
		return "操作过于频繁，请稍后重试"
	}
	return fmt.Sprintf("操作过于频繁，请 %d 秒后重试", int(d.Seconds())+1)
}
