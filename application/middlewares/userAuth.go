package middlewares

import (
	"strings"

	apperrors "mruput.io/application/appErrors"
	"mruput.io/application/interfaces"
	authusecase "mruput.io/application/usecases/auth"
	"mruput.io/infrastructure/auth"
)

func UserAuthenticationMiddleware(ctx *interfaces.ApplicationContext[any], verifier *auth.TokenVerifier) (*interfaces.ApplicationContext[any], bool) {
	authToken := ""
	if header := ctx.GetHeader("Authorization"); header != nil {
		authToken = strings.TrimSpace(strings.TrimPrefix(*header, "Bearer"))
	}
	authResult := authusecase.IsUserSignedIn(ctx.Context(), verifier, authToken, ctx.DeviceID)
	if !authResult.IsAuthenticated {
		apperrors.AuthenticationError(ctx.Ctx, authResult.ErrorMessage, ctx.DeviceID)
		return nil, false
	}

	ctx.SetContextData("UserID", authResult.UserID)
	ctx.SetContextData("Email", authResult.Email)
	ctx.SetContextData("Name", authResult.Name)
	ctx.SetContextData("OfficeID", authResult.OfficeID)
	ctx.SetContextData("TokenID", authResult.TokenID)
	ctx.SetContextData("TokenExpiresAt", authResult.ExpiresAt)
	return ctx, true
}
