package routev1

import (
	"github.com/gin-gonic/gin"

	"mruput.io/application/interfaces"
)

// appContextWith copies the request details gathered by the middlewares onto
// a context carrying body.
func appContextWith[T any](ctx *gin.Context, body *T) *interfaces.ApplicationContext[T] {
	appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
	return &interfaces.ApplicationContext[T]{
		Ctx:        ctx,
		Body:       body,
		Keys:       appContext.Keys,
		Header:     ctx.Request.Header,
		Param:      params(ctx),
		DeviceID:   appContext.DeviceID,
		UserAgent:  appContext.UserAgent,
		DeviceName: appContext.DeviceName,
		ClientIP:   appContext.ClientIP,
	}
}

func params(ctx *gin.Context) map[string]any {
	values := map[string]any{}
	for _, param := range ctx.Params {
		values[param.Key] = param.Value
	}
	return values
}
