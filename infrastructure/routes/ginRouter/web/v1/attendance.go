package routev1

import (
	"github.com/gin-gonic/gin"

	apperrors "mruput.io/application/appErrors"
	"mruput.io/application/controller"
	"mruput.io/application/controller/dto"
	"mruput.io/application/interfaces"
	middlewares "mruput.io/infrastructure/middleware"
)

func AttendanceRouter(router *gin.RouterGroup) {
	attendanceRouter := router.Group("/attendance")
	attendanceRouter.Use(middlewares.UserAuthenticationMiddleware())
	{
		attendanceRouter.POST("/attempts", func(ctx *gin.Context) {
			var body dto.StartAttemptDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx, deviceID(ctx))
				return
			}
			controller.StartAttempt(appContextWith(ctx, &body))
		})

		attendanceRouter.POST("/attempts/:id/frames", func(ctx *gin.Context) {
			var body dto.PushFramesDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx, deviceID(ctx))
				return
			}
			controller.PushFrames(appContextWith(ctx, &body))
		})

		attendanceRouter.POST("/attempts/:id/still", func(ctx *gin.Context) {
			var body dto.PushStillDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx, deviceID(ctx))
				return
			}
			controller.PushStill(appContextWith(ctx, &body))
		})

		attendanceRouter.POST("/attempts/:id/location", func(ctx *gin.Context) {
			var body dto.PushLocationDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx, deviceID(ctx))
				return
			}
			controller.PushLocation(appContextWith(ctx, &body))
		})

		attendanceRouter.GET("/attempts/:id", func(ctx *gin.Context) {
			controller.GetAttempt(appContextWith[any](ctx, nil))
		})

		attendanceRouter.DELETE("/attempts/:id", func(ctx *gin.Context) {
			controller.CancelAttempt(appContextWith[any](ctx, nil))
		})

		attendanceRouter.POST("/verify", func(ctx *gin.Context) {
			var body dto.VerifyRecordedAttemptDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx, deviceID(ctx))
				return
			}
			controller.VerifyRecordedAttempt(appContextWith(ctx, &body))
		})

		attendanceRouter.POST("/enrollment", func(ctx *gin.Context) {
			var body dto.EnrollSelfDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx, deviceID(ctx))
				return
			}
			controller.EnrollSelf(appContextWith(ctx, &body))
		})

		attendanceRouter.GET("/records", func(ctx *gin.Context) {
			var query dto.AttendanceHistoryQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				apperrors.ErrorProcessingPayload(ctx, deviceID(ctx))
				return
			}
			controller.ListAttendanceRecords(appContextWith(ctx, &query))
		})
	}
}

func deviceID(ctx *gin.Context) *string {
	appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
	return &appContext.DeviceID
}
