package auth_usecases

import (
	"context"
	"errors"

	"mruput.io/infrastructure/auth"
	"mruput.io/infrastructure/logger"
)

type UserAuthResult struct {
	IsAuthenticated bool
	UserID          string
	Email           string
	Name            string
	OfficeID        string
	DeviceID        string
	TokenID         string
	ExpiresAt       int64
	ErrorMessage    string
}

// IsUserSignedIn validates an employee bearer token. Tokens bound to a device
// are only accepted from that device.
func IsUserSignedIn(ctx context.Context, verifier *auth.TokenVerifier, authToken string, deviceID string) UserAuthResult {
	result := UserAuthResult{}
	if authToken == "" {
		result.ErrorMessage = "missing auth token"
		return result
	}
	if verifier == nil {
		logger.Error("token verifier not initialised")
		result.ErrorMessage = "unauthorised access"
		return result
	}
	claims, err := verifier.DecodeAuthToken(ctx, authToken)
	if err != nil {
		if errors.Is(err, auth.ErrRevokedToken) {
			result.ErrorMessage = err.Error()
			return result
		}
		result.ErrorMessage = "this session has expired"
		return result
	}
	if claims.DeviceID != "" && claims.DeviceID != deviceID {
		logger.Warning("client made request using device id different from that in access token", logger.LoggerOptions{
			Key:  "token device id",
			Data: claims.DeviceID,
		}, logger.LoggerOptions{
			Key:  "request device id",
			Data: deviceID,
		})
		result.ErrorMessage = "unauthorised access"
		return result
	}
	return UserAuthResult{
		IsAuthenticated: true,
		UserID:          claims.UserID,
		Email:           claims.Email,
		Name:            claims.Name,
		OfficeID:        claims.OfficeID,
		DeviceID:        deviceID,
		TokenID:         claims.TokenID,
		ExpiresAt:       claims.ExpiresAt,
	}
}
