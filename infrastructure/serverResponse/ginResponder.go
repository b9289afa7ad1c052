package server_response

import (
	"os"

	"github.com/gin-gonic/gin"

	"mruput.io/infrastructure/logger"
)

type ginResponder struct{}

var Responder = ginResponder{}

// Respond writes the JSON envelope {message, body, errors, response_code} and
// aborts the handler chain.
func (gr ginResponder) Respond(ctx interface{}, code int, message string, payload interface{}, errs []error, response_code *uint, device_id *string) {
	ginCtx, ok := (ctx).(*gin.Context)
	if !ok {
		logger.Error("could not transform *interface{} to gin.Context in serverResponse package", logger.LoggerOptions{
			Key:  "payload",
			Data: ctx,
		})
		return
	}
	ginCtx.Abort()
	response := envelope(message, payload, errs, response_code)
	if os.Getenv("ENV") != "prod" && code >= 400 {
		logger.Info("response", logger.LoggerOptions{
			Key:  "message",
			Data: message,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: response["errors"],
		}, logger.LoggerOptions{
			Key:  "deviceID",
			Data: device_id,
		})
	}
	ginCtx.JSON(code, response)
}

// UnEncryptedRespond is used where no device context exists yet, such as
// health checks and unknown routes.
func (gr ginResponder) UnEncryptedRespond(ctx interface{}, code int, message string, payload interface{}, errs []error, response_code *uint) {
	gr.Respond(ctx, code, message, payload, errs, response_code, nil)
}

// RespondRaw writes payload as the whole body. It serves wire contracts that
// predate the envelope, such as the face service API.
func (gr ginResponder) RespondRaw(ctx interface{}, code int, payload interface{}) {
	ginCtx, ok := (ctx).(*gin.Context)
	if !ok {
		logger.Error("could not transform *interface{} to gin.Context in serverResponse package", logger.LoggerOptions{
			Key:  "payload",
			Data: ctx,
		})
		return
	}
	ginCtx.Abort()
	ginCtx.JSON(code, payload)
}

func envelope(message string, payload interface{}, errs []error, response_code *uint) map[string]any {
	response := map[string]any{
		"message": message,
		"body":    payload,
	}
	if response_code != nil {
		response["response_code"] = response_code
	}
	if errs != nil {
		errMsgs := []string{}
		for _, err := range errs {
			errMsgs = append(errMsgs, err.Error())
		}
		response["errors"] = errMsgs
	}
	return response
}
