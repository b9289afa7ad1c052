package apperrors

import (
	"fmt"
	"net/http"

	"mruput.io/infrastructure/logger"
	server_response "mruput.io/infrastructure/serverResponse"
)

func NotFoundError(ctx interface{}, message string, deviceID *string) {
	server_response.Responder.Respond(ctx, http.StatusNotFound, message, nil, nil, nil, deviceID)
}

func ValidationFailedError(ctx interface{}, errMessages *[]error, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusUnprocessableEntity, "Payload validation failed", nil, *errMessages, nil, &deviceID)
}

func EntityAlreadyExistsError(ctx interface{}, message string, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusConflict, message, nil, nil, nil, &deviceID)
}

func AuthenticationError(ctx interface{}, message string, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusUnauthorized, message, nil, nil, nil, &deviceID)
}

func ForbiddenError(ctx interface{}, message string, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusForbidden, message, nil, nil, nil, &deviceID)
}

func ExternalDependencyError(ctx interface{}, serviceName string, statusCode string, err error, responseCode *uint, deviceID string) {
	logger.Error(fmt.Sprintf("error with %s. status code %s", serviceName, statusCode), logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusServiceUnavailable,
		"Our service is temporarily unavailable. Please try again shortly.", nil, nil, responseCode, &deviceID)
}

func ErrorProcessingPayload(ctx interface{}, deviceID *string) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, "Abnormal payload passed", nil, nil, nil, deviceID)
}

func FatalServerError(ctx interface{}, err error, deviceID string) {
	logger.Error("fatal server error", logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusInternalServerError,
		"Something went wrong on our side. Please try again shortly.", nil, nil, nil, &deviceID)
}

func UnknownError(ctx interface{}, err error, responseCode *uint, deviceID string) {
	logger.Error("unknown error", logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusBadRequest,
		"Something went wrong. Please try again.", nil, nil, responseCode, &deviceID)
}

func CustomError(ctx interface{}, msg string, responseCode *uint, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, msg, nil, nil, responseCode, &deviceID)
}

func MalformedHeader(ctx interface{}, deviceID *string) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest,
		"malformed header information", nil, nil, nil, deviceID)
}

func ClientError(ctx interface{}, msg string, errs []error, responseCode *uint, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, msg, nil, errs, responseCode, &deviceID)
}

// ConflictError is used when the requested change races a state transition,
// such as pushing frames to a decided attempt.
func ConflictError(ctx interface{}, msg string, responseCode *uint, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusConflict, msg, nil, nil, responseCode, &deviceID)
}
