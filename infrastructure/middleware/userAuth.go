package middlewares

import (
	"github.com/gin-gonic/gin"

	"mruput.io/application/interfaces"
	"mruput.io/application/middlewares"
	"mruput.io/infrastructure/auth"
)

func UserAuthenticationMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		savedCtx := (ctx.MustGet("AppContext")).(*interfaces.ApplicationContext[any])
		appContext, next := middlewares.UserAuthenticationMiddleware(&interfaces.ApplicationContext[any]{
			Ctx:        ctx,
			Keys:       savedCtx.Keys,
			Header:     ctx.Request.Header,
			DeviceID:   savedCtx.DeviceID,
			DeviceName: savedCtx.DeviceName,
			UserAgent:  savedCtx.UserAgent,
			ClientIP:   savedCtx.ClientIP,
		}, auth.Verifier)
		if next {
			ctx.Set("AppContext", appContext)
			ctx.Next()
		}
	}
}
