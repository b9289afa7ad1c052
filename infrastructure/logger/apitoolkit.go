package logger

import (
	"context"
	"os"

	apitoolkit "github.com/apitoolkit/apitoolkit-go"
	"github.com/gin-gonic/gin"
)

type APIToolKitMonitor struct {
	client *apitoolkit.Client
}

// Init connects to apitoolkit when APITOOLKIT_KEY is set. Without a key the
// monitor stays disabled and its middleware passes requests through.
func (m *APIToolKitMonitor) Init() {
	key := os.Getenv("APITOOLKIT_KEY")
	if key == "" {
		Info("apitoolkit key missing. request monitoring disabled")
		return
	}
	client, err := apitoolkit.NewClient(context.Background(), apitoolkit.Config{APIKey: key})
	if err != nil {
		Error("could not initialise apitoolkit client", LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return
	}
	m.client = client
	Info("apitoolkit request monitoring enabled")
}

func (m *APIToolKitMonitor) RequestMetricMiddleware() gin.HandlerFunc {
	if m.client == nil {
		return func(ctx *gin.Context) {
			ctx.Next()
		}
	}
	return m.client.GinMiddleware
}
