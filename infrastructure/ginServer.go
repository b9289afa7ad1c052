package infrastructure

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apperrors "mruput.io/application/appErrors"
	"mruput.io/infrastructure/logger"
	middlewares "mruput.io/infrastructure/middleware"
	ratelimit "mruput.io/infrastructure/ratelimit"
	webRoutev1 "mruput.io/infrastructure/routes/ginRouter/web/v1"
	server_response "mruput.io/infrastructure/serverResponse"
	startup "mruput.io/infrastructure/startUp"
)

type ginServer struct{}

func (s *ginServer) Start() {
	startup.StartServices()
	defer startup.CleanUpServices()

	server := NewRouter()

	gin_mode := os.Getenv("GIN_MODE")
	port := startup.Settings.Port
	if gin_mode == "debug" || gin_mode == "release" {
		logger.Info(fmt.Sprintf("Server starting on PORT %s", port))
		server.Run(fmt.Sprintf(":%s", port))
	} else {
		panic(fmt.Sprintf("invalid gin mode used - %s", gin_mode))
	}
}

// NewRouter builds the HTTP surface: the attendance API used by the kiosk and
// mobile clients, and the face service contract used by other services.
func NewRouter() *gin.Engine {
	server := gin.Default()
	server.ContextWithFallback = true
	origins := []string{}
	if os.Getenv("GIN_MODE") == "debug" {
		origins = append(origins, "http://localhost:5173")
	} else if allowed := os.Getenv("ALLOWED_ORIGINS"); allowed != "" {
		origins = append(origins, splitOrigins(allowed)...)
	}
	corsConfig := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Device-Id", "User-Agent", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	server.Use(cors.New(corsConfig))
	server.Use(ratelimit.TokenBucketPerIP())
	server.MaxMultipartMemory = 15 << 20

	server.Use(logger.RequestMetricMonitor.RequestMetricMiddleware())

	v1 := server.Group("/api")
	v1.Use(middlewares.UserAgentMiddleware())
	routerV1 := v1.Group("/v1")
	{
		webRoutev1.AttendanceRouter(routerV1)
	}

	serviceV1 := server.Group("/api/v1")
	{
		webRoutev1.BiometricRouter(serviceV1)
	}

	server.GET("/ping", func(ctx *gin.Context) {
		server_response.Responder.UnEncryptedRespond(ctx, http.StatusOK, "pong!", nil, nil, nil)
	})

	server.NoRoute(func(ctx *gin.Context) {
		apperrors.NotFoundError(ctx, fmt.Sprintf("%s %s does not exist", ctx.Request.Method, ctx.Request.URL), nil)
	})
	return server
}

func splitOrigins(raw string) []string {
	origins := []string{}
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
