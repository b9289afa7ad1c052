package ratelimit

import (
	"encoding/json"
	"os"
	"time"

	"github.com/didip/tollbooth"
	"github.com/didip/tollbooth/limiter"
	"github.com/didip/tollbooth_gin"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// DefaultRequestsPerSecond leaves room for a kiosk streaming challenge frames
// several times a second.
const DefaultRequestsPerSecond = 25

// TokenBucketPerIP limits requests per client IP. RATE_LIMIT_PER_SECOND
// overrides the default rate.
func TokenBucketPerIP() gin.HandlerFunc {
	return TokenBucket(requestsPerSecond())
}

func TokenBucket(perSecond float64) gin.HandlerFunc {
	message := map[string]any{
		"message": "You are going too fast! You have been ratelimited.",
		"body":    nil,
	}
	jsonMessage, _ := json.Marshal(message)

	tlbthLimiter := tollbooth.NewLimiter(perSecond, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Minute * 1,
	})
	tlbthLimiter.SetIPLookups([]string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"})
	tlbthLimiter.SetMessageContentType("application/json")
	tlbthLimiter.SetMessage(string(jsonMessage))

	return tollbooth_gin.LimitHandler(tlbthLimiter)
}

func requestsPerSecond() float64 {
	if raw := os.Getenv("RATE_LIMIT_PER_SECOND"); raw != "" {
		if parsed, err := cast.ToFloat64E(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return DefaultRequestsPerSecond
}
