package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	apperrors "mruput.io/application/appErrors"
	"mruput.io/application/constants"
	"mruput.io/application/controller/dto"
	"mruput.io/application/interfaces"
	"mruput.io/application/services/verification"
	attendance_usecases "mruput.io/application/usecases/attendance"
	"mruput.io/application/utils"
	"mruput.io/infrastructure/biometric"
	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/enrollment"
	"mruput.io/infrastructure/geolocation"
	server_response "mruput.io/infrastructure/serverResponse"
	"mruput.io/infrastructure/validator"
)

func attemptMetadata[T any](ctx *interfaces.ApplicationContext[T]) verification.AttemptMetadata {
	metadata := verification.AttemptMetadata{
		DeviceID:  ctx.DeviceID,
		UserAgent: ctx.UserAgent,
		IPAddress: ctx.ClientIP,
	}
	if lang := ctx.GetHeader("Accept-Language"); lang != nil {
		metadata.Language = *lang
	}
	return metadata
}

func StartAttempt(ctx *interfaces.ApplicationContext[dto.StartAttemptDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}
	officeID := ctx.Body.OfficeID
	if officeID == "" {
		officeID = ctx.GetStringContextData("OfficeID")
	}
	live, err := attendance_usecases.Attendance.StartAttempt(ctx.Context(), attendance_usecases.StartInput{
		UserID:    ctx.GetStringContextData("UserID"),
		SessionID: ctx.Body.SessionID,
		OfficeID:  officeID,
		WorkMode:  geolocation.WorkMode(ctx.Body.WorkMode),
		Metadata:  attemptMetadata(ctx),
	})
	if err != nil {
		respondAttemptError(ctx.Ctx, err, ctx.DeviceID)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "attendance attempt started", live.Status(), nil, nil, &ctx.DeviceID)
}

func PushFrames(ctx *interfaces.ApplicationContext[dto.PushFramesDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}
	attemptID := ctx.GetStringParameter("id")
	userID := ctx.GetStringContextData("UserID")
	accepted, err := attendance_usecases.Attendance.PushFrames(attemptID, userID, ctx.Body.Frames)
	if err != nil {
		respondAttemptError(ctx.Ctx, err, ctx.DeviceID)
		return
	}
	live, err := attendance_usecases.Attendance.GetAttempt(attemptID, userID)
	if err != nil {
		respondAttemptError(ctx.Ctx, err, ctx.DeviceID)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusAccepted, "frames received", map[string]any{
		"accepted": accepted,
		"status":   live.Status(),
	}, nil, nil, &ctx.DeviceID)
}

func PushStill(ctx *interfaces.ApplicationContext[dto.PushStillDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}
	image, err := utils.DecodeBase64Image(ctx.Body.Image)
	if err != nil {
		apperrors.ClientError(ctx.Ctx, "invalid image format", []error{err}, nil, ctx.DeviceID)
		return
	}
	if err := attendance_usecases.Attendance.PushStill(ctx.GetStringParameter("id"), ctx.GetStringContextData("UserID"), image); err != nil {
		respondAttemptError(ctx.Ctx, err, ctx.DeviceID)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusAccepted, "still frame received", nil, nil, nil, &ctx.DeviceID)
}

func PushLocation(ctx *interfaces.ApplicationContext[dto.PushLocationDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}
	report := ctx.Body.ToReport(time.Now())
	if err := attendance_usecases.Attendance.PushLocation(ctx.GetStringParameter("id"), ctx.GetStringContextData("UserID"), report); err != nil {
		respondAttemptError(ctx.Ctx, err, ctx.DeviceID)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusAccepted, "location received", nil, nil, nil, &ctx.DeviceID)
}

func GetAttempt(ctx *interfaces.ApplicationContext[any]) {
	live, err := attendance_usecases.Attendance.GetAttempt(ctx.GetStringParameter("id"), ctx.GetStringContextData("UserID"))
	if err != nil {
		respondAttemptError(ctx.Ctx, err, ctx.DeviceID)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "attempt fetched", live.Status(), nil, nil, &ctx.DeviceID)
}

func CancelAttempt(ctx *interfaces.ApplicationContext[any]) {
	waitCtx, cancel := context.WithTimeout(ctx.Context(), 10*time.Second)
	defer cancel()
	live, err := attendance_usecases.Attendance.CancelAttempt(waitCtx, ctx.GetStringParameter("id"), ctx.GetStringContextData("UserID"))
	if err != nil {
		respondAttemptError(ctx.Ctx, err, ctx.DeviceID)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "attempt canceled", live.Status(), nil, utils.GetUIntPointer(constants.ATTEMPT_CANCELED), &ctx.DeviceID)
}

// VerifyRecordedAttempt evaluates a fully captured attempt in one request.
func VerifyRecordedAttempt(ctx *interfaces.ApplicationContext[dto.VerifyRecordedAttemptDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}
	stills := make([][]byte, 0, len(ctx.Body.Stills))
	for _, encoded := range ctx.Body.Stills {
		image, err := utils.DecodeBase64Image(encoded)
		if err != nil {
			apperrors.ClientError(ctx.Ctx, "invalid image format", []error{err}, nil, ctx.DeviceID)
			return
		}
		stills = append(stills, image)
	}
	now := time.Now()
	reports := make([]geolocation.FixReport, 0, len(ctx.Body.Locations))
	for i := range ctx.Body.Locations {
		reports = append(reports, ctx.Body.Locations[i].ToReport(now))
	}
	officeID := ctx.Body.OfficeID
	if officeID == "" {
		officeID = ctx.GetStringContextData("OfficeID")
	}
	decision, err := attendance_usecases.Attendance.EvaluateRecorded(ctx.Context(), attendance_usecases.RecordedInput{
		UserID:    ctx.GetStringContextData("UserID"),
		OfficeID:  officeID,
		WorkMode:  geolocation.WorkMode(ctx.Body.WorkMode),
		Frames:    ctx.Body.Frames,
		Stills:    stills,
		Locations: reports,
		Metadata:  attemptMetadata(ctx),
	})
	respondDecision(ctx.Ctx, decision, err, ctx.DeviceID)
}

// EnrollSelf replaces the signed in employee's reference face.
func EnrollSelf(ctx *interfaces.ApplicationContext[dto.EnrollSelfDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}
	image, err := utils.DecodeBase64Image(ctx.Body.Image)
	if err != nil {
		apperrors.ClientError(ctx.Ctx, "invalid image format", []error{err}, nil, ctx.DeviceID)
		return
	}
	_, err = attendance_usecases.EnrollFace(ctx.Context(), biometric.FaceService, enrollment.EnrollmentStore, biometric.Provider, ctx.GetStringContextData("UserID"), image)
	if err != nil {
		respondFaceError(ctx.Ctx, err, ctx.DeviceID)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "face enrolled", nil, nil, nil, &ctx.DeviceID)
}

func ListAttendanceRecords(ctx *interfaces.ApplicationContext[dto.AttendanceHistoryQuery]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}
	records, err := attendance_usecases.ListAttendanceRecords(ctx.Context(), ctx.GetStringContextData("UserID"), ctx.Body.Limit, ctx.Body.LastID)
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err, ctx.DeviceID)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "attendance records fetched", records, nil, nil, &ctx.DeviceID)
}

func respondDecision(ctx any, decision *verification.Decision, err error, deviceID string) {
	var recordErr *verification.RecordError
	switch {
	case decision != nil && errors.As(err, &recordErr):
		server_response.Responder.Respond(ctx, http.StatusAccepted, "attendance decided but not recorded. please try again", decision, []error{err}, utils.GetUIntPointer(constants.ATTENDANCE_NOT_RECORDED), &deviceID)
	case err != nil:
		respondAttemptError(ctx, err, deviceID)
	case decision.Accepted():
		server_response.Responder.Respond(ctx, http.StatusOK, decision.Message, decision, nil, utils.GetUIntPointer(constants.ATTENDANCE_ACCEPTED), &deviceID)
	default:
		code := constants.ATTENDANCE_REJECTED
		switch decision.ReasonCode {
		case verification.ReasonEnrollmentNotFound:
			code = constants.ENROLLMENT_MISSING
		case verification.ReasonLocationMocked:
			code = constants.MOCK_LOCATION_DETECTED
		case verification.ReasonRemoteServiceError:
			code = constants.FACE_SERVICE_UNAVAILABLE
		case verification.ReasonNoFaceDetected:
			code = constants.NO_FACE_IN_IMAGE
		}
		server_response.Responder.Respond(ctx, http.StatusOK, decision.Message, decision, nil, utils.GetUIntPointer(code), &deviceID)
	}
}

func respondAttemptError(ctx any, err error, deviceID string) {
	switch {
	case errors.Is(err, attendance_usecases.ErrAttemptNotFound):
		apperrors.NotFoundError(ctx, err.Error(), &deviceID)
	case errors.Is(err, attendance_usecases.ErrOfficeNotFound):
		server_response.Responder.Respond(ctx, http.StatusNotFound, err.Error(), nil, nil, utils.GetUIntPointer(constants.OFFICE_NOT_FOUND), &deviceID)
	case errors.Is(err, attendance_usecases.ErrAttemptFinished):
		apperrors.ConflictError(ctx, err.Error(), nil, deviceID)
	case errors.Is(err, attendance_usecases.ErrTooManyAttempts):
		server_response.Responder.Respond(ctx, http.StatusTooManyRequests, err.Error(), nil, nil, nil, &deviceID)
	case errors.Is(err, verification.ErrAttemptCanceled):
		apperrors.ConflictError(ctx, "attendance attempt was canceled", utils.GetUIntPointer(constants.ATTEMPT_CANCELED), deviceID)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		apperrors.CustomError(ctx, "request ended before the attempt finished", nil, deviceID)
	default:
		apperrors.FatalServerError(ctx, err, deviceID)
	}
}

func respondFaceError(ctx any, err error, deviceID string) {
	var dimensionErr *types.DimensionMismatchError
	var remoteErr *types.RemoteServiceError
	switch {
	case errors.Is(err, types.ErrNoFaceDetected), errors.Is(err, types.ErrMultipleFaces):
		apperrors.ClientError(ctx, err.Error(), nil, utils.GetUIntPointer(constants.NO_FACE_IN_IMAGE), deviceID)
	case errors.As(err, &dimensionErr):
		apperrors.ClientError(ctx, err.Error(), nil, utils.GetUIntPointer(constants.INVALID_EMBEDDING_DIMENSION), deviceID)
	case errors.Is(err, biometric.ErrEmptyGallery):
		apperrors.ClientError(ctx, err.Error(), nil, nil, deviceID)
	case errors.As(err, &remoteErr):
		apperrors.ExternalDependencyError(ctx, "face-service", remoteStatus(remoteErr), err, utils.GetUIntPointer(constants.FACE_SERVICE_UNAVAILABLE), deviceID)
	default:
		apperrors.FatalServerError(ctx, err, deviceID)
	}
}

func remoteStatus(err *types.RemoteServiceError) string {
	if err.StatusCode == 0 {
		return "unreachable"
	}
	return http.StatusText(err.StatusCode)
}
