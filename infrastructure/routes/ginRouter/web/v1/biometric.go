package routev1

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"mruput.io/application/controller"
	"mruput.io/application/controller/dto"
	"mruput.io/application/interfaces"
	"mruput.io/application/utils"
	"mruput.io/infrastructure/biometric/types"
	server_response "mruput.io/infrastructure/serverResponse"
)

// BiometricRouter serves the face service contract. Callers are services, not
// devices, so the device header middleware does not apply. When
// FACE_SERVICE_KEY is set requests must carry it in X-Service-Key.
func BiometricRouter(router *gin.RouterGroup) {
	biometricRouter := router.Group("/biometric")
	biometricRouter.Use(serviceKeyMiddleware(os.Getenv("FACE_SERVICE_KEY")))
	{
		biometricRouter.GET("/health", func(ctx *gin.Context) {
			controller.FaceServiceHealth(serviceContext[any](ctx, nil))
		})

		biometricRouter.POST("/enroll", func(ctx *gin.Context) {
			var body dto.FaceImageDTO
			if !bindContract(ctx, &body) {
				return
			}
			controller.EnrollFaceEncoding(serviceContext(ctx, &body))
		})

		biometricRouter.POST("/verify", func(ctx *gin.Context) {
			var body dto.VerifyFaceDTO
			if !bindContract(ctx, &body) {
				return
			}
			controller.VerifyFaceEncoding(serviceContext(ctx, &body))
		})

		biometricRouter.POST("/batch-verify", func(ctx *gin.Context) {
			var body dto.BatchVerifyDTO
			if !bindContract(ctx, &body) {
				return
			}
			controller.BatchVerifyFaceEncoding(serviceContext(ctx, &body))
		})

		biometricRouter.POST("/identify", func(ctx *gin.Context) {
			var body dto.IdentifyDTO
			if !bindContract(ctx, &body) {
				return
			}
			controller.IdentifyFace(serviceContext(ctx, &body))
		})
	}
}

func serviceContext[T any](ctx *gin.Context, body *T) *interfaces.ApplicationContext[T] {
	return &interfaces.ApplicationContext[T]{
		Ctx:      ctx,
		Body:     body,
		Keys:     ctx.Keys,
		Header:   ctx.Request.Header,
		ClientIP: ctx.ClientIP(),
	}
}

func bindContract(ctx *gin.Context, body any) bool {
	if err := ctx.ShouldBindJSON(body); err != nil {
		server_response.Responder.RespondRaw(ctx, http.StatusBadRequest, types.FaceServiceResponse{
			Success: false,
			Error:   utils.GetStringPointer("invalid request body"),
		})
		return false
	}
	return true
}

func serviceKeyMiddleware(key string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if key == "" {
			ctx.Next()
			return
		}
		provided := ctx.GetHeader("X-Service-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			server_response.Responder.RespondRaw(ctx, http.StatusUnauthorized, types.FaceServiceResponse{
				Success: false,
				Error:   utils.GetStringPointer("invalid service key"),
			})
			return
		}
		ctx.Next()
	}
}
