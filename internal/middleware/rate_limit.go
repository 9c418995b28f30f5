package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ==================== 公开接口限流 ====================

// visitor 单个客户端的令牌桶
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// IPRateLimiter 按客户端 IP 的令牌桶限流
type IPRateLimiter struct {
	visitors sync.Map // key -> *visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
}

// NewIPRateLimiter 创建限流器
// perMinute: 每分钟允许的请求数；burst: 突发上限
func NewIPRateLimiter(perMinute int, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		idleTTL: 10 * time.Minute,
	}
}

// Allow 检查 key 是否还有令牌
func (l *IPRateLimiter) Allow(key string) bool {
	actual, _ := l.visitors.LoadOrStore(key, &visitor{
		limiter: rate.NewLimiter(l.limit, l.burst),
	})
	v := actual.(*visitor)

	v.mu.Lock()
	v.lastSeen = time.Now()
	v.mu.Unlock()

	return v.limiter.Allow()
}

// Cleanup 清理长时间未访问的客户端
func (l *IPRateLimiter) Cleanup() {
	cutoff := time.Now().Add(-l.idleTTL)
	l.visitors.Range(func(key, value any) bool {
		v := value.(*visitor)
		v.mu.Lock()
		idle := v.lastSeen.Before(cutoff)
		v.mu.Unlock()
		if idle {
			l.visitors.Delete(key)
		}
		return true
	})
}

// RateLimit 公开接口限流中间件
//
// 使用示例:
//
//	limiter := middleware.NewIPRateLimiter(20, 5)
//	api.POST("/create-preference", middleware.RateLimit(limiter), checkoutCtl.CreatePreference)
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.FullPath() + "|" + c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Demasiadas solicitudes, intentá nuevamente en unos segundos",
			})
			return
		}
		c.Next()
	}
}

// ==================== 手动任务冷却 ====================

// CooldownLimiter 手动触发任务的冷却控制
// 防止管理员频繁触发对账导致支付平台限流
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时记录本次执行时间
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// Cooldown 冷却中间件，同一 key 在 interval 内只允许一次
// 处理失败（非 2xx）不占用冷却窗口
func Cooldown(r *CooldownLimiter, key string, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := r.Check(key, interval)
		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       formatRetryMessage(result.RetryAfter),
				"retry_after": int(result.RetryAfter.Seconds()),
			})
			return
		}
		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			r.Reset(key)
		}
	}
}

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("Operación en espera, reintentá en %d segundos", seconds)
	}
	return fmt.Sprintf("Operación en espera, reintentá en %d minutos", (seconds+59)/60)
}
