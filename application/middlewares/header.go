package middlewares

import (
	"errors"

	apperrors "mruput.io/application/appErrors"
	"mruput.io/application/interfaces"
	"mruput.io/infrastructure/useragent"
)

// UserAgentMiddleware requires the User-Agent and X-Device-Id headers and
// stores the parsed device details on the context.
func UserAgentMiddleware(ctx *interfaces.ApplicationContext[any], clientIP string) (*interfaces.ApplicationContext[any], bool) {
	deviceID := ctx.GetHeader("X-Device-Id")
	agent := ctx.GetHeader("User-Agent")
	if agent == nil || *agent == "" {
		id := ""
		if deviceID != nil {
			id = *deviceID
		}
		apperrors.ClientError(ctx.Ctx, "user agent header missing", []error{errors.New("user agent header missing")}, nil, id)
		return nil, false
	}
	if deviceID == nil || *deviceID == "" {
		apperrors.MalformedHeader(ctx.Ctx, nil)
		return nil, false
	}
	agentDetails := useragent.ParseUserAgent(*agent)
	ctx.UserAgent = *agent
	ctx.DeviceName = agentDetails.Browser()
	ctx.DeviceID = *deviceID
	ctx.ClientIP = clientIP
	return ctx, true
}
