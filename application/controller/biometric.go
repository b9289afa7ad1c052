package controller

import (
	"errors"
	"net/http"

	"mruput.io/application/controller/dto"
	"mruput.io/application/interfaces"
	"mruput.io/application/utils"
	"mruput.io/infrastructure/biometric"
	"mruput.io/infrastructure/biometric/types"
	"mruput.io/infrastructure/enrollment"
	"mruput.io/infrastructure/logger"
	server_response "mruput.io/infrastructure/serverResponse"
	"mruput.io/infrastructure/validator"
)

// The handlers below serve the face service contract, so a RemoteFaceService
// can point at this process. Responses use the contract body instead of the
// usual envelope.

const faceServiceVersion = "1.0.0"

func FaceServiceHealth(ctx *interfaces.ApplicationContext[any]) {
	status := "healthy"
	if local, ok := biometric.FaceService.(*biometric.LocalFaceService); ok && !local.Loaded() {
		status = "loading"
	}
	server_response.Responder.RespondRaw(ctx.Ctx, http.StatusOK, types.HealthResponse{
		Status:  status,
		Service: "mruput-face",
		Version: faceServiceVersion,
	})
}

func EnrollFaceEncoding(ctx *interfaces.ApplicationContext[dto.FaceImageDTO]) {
	if validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); validationErr != nil {
		contractError(ctx.Ctx, http.StatusBadRequest, (*validationErr)[0])
		return
	}
	image, _ := utils.DecodeBase64Image(ctx.Body.Image)
	embedding, err := biometric.FaceService.Enroll(ctx.Context(), image)
	if err != nil {
		contractFaceError(ctx.Ctx, err)
		return
	}
	server_response.Responder.RespondRaw(ctx.Ctx, http.StatusOK, types.FaceServiceResponse{
		Success:  true,
		Encoding: embedding.ToFloat64(),
		Message:  utils.GetStringPointer("face encoded"),
	})
}

func VerifyFaceEncoding(ctx *interfaces.ApplicationContext[dto.VerifyFaceDTO]) {
	if validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); validationErr != nil {
		contractError(ctx.Ctx, http.StatusBadRequest, (*validationErr)[0])
		return
	}
	threshold := types.DefaultMatchThreshold
	if ctx.Body.Threshold != nil {
		threshold = *ctx.Body.Threshold
	}
	stored := types.FromFloat64(ctx.Body.StoredEncoding)
	if len(stored) != types.EmbeddingLength {
		contractError(ctx.Ctx, http.StatusBadRequest, &types.DimensionMismatchError{Candidate: types.EmbeddingLength, Enrolled: len(stored)})
		return
	}
	image, _ := utils.DecodeBase64Image(ctx.Body.Image)
	candidate, err := biometric.FaceService.Enroll(ctx.Context(), image)
	if err != nil {
		contractFaceError(ctx.Ctx, err)
		return
	}
	result, err := biometric.Match(candidate, stored, threshold)
	if err != nil {
		contractFaceError(ctx.Ctx, err)
		return
	}
	distance := biometric.RoundTo(result.Distance, 4)
	confidence := biometric.RoundTo(result.Similarity*100, 2)
	server_response.Responder.RespondRaw(ctx.Ctx, http.StatusOK, types.FaceServiceResponse{
		Success:    true,
		Match:      &result.IsMatch,
		Distance:   &distance,
		Confidence: &confidence,
		Threshold:  &threshold,
	})
}

func BatchVerifyFaceEncoding(ctx *interfaces.ApplicationContext[dto.BatchVerifyDTO]) {
	if validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); validationErr != nil {
		contractError(ctx.Ctx, http.StatusBadRequest, (*validationErr)[0])
		return
	}
	threshold := types.DefaultMatchThreshold
	if ctx.Body.Threshold != nil {
		threshold = *ctx.Body.Threshold
	}
	image, _ := utils.DecodeBase64Image(ctx.Body.Image)
	candidate, err := biometric.FaceService.Enroll(ctx.Context(), image)
	if err != nil {
		contractFaceError(ctx.Ctx, err)
		return
	}
	best, found, err := biometric.FindBestMatch(candidate, ctx.Body.Gallery(), threshold)
	if err != nil {
		contractFaceError(ctx.Ctx, err)
		return
	}
	respondBestMatch(ctx.Ctx, best, found)
}

// IdentifyFace searches every stored enrollment for the face in the image.
func IdentifyFace(ctx *interfaces.ApplicationContext[dto.IdentifyDTO]) {
	if validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); validationErr != nil {
		contractError(ctx.Ctx, http.StatusBadRequest, (*validationErr)[0])
		return
	}
	threshold := types.DefaultMatchThreshold
	if ctx.Body.Threshold != nil {
		threshold = *ctx.Body.Threshold
	}
	image, _ := utils.DecodeBase64Image(ctx.Body.Image)
	candidate, err := biometric.FaceService.Enroll(ctx.Context(), image)
	if err != nil {
		contractFaceError(ctx.Ctx, err)
		return
	}
	best, found, err := enrollment.EnrollmentStore.Identify(ctx.Context(), candidate, threshold)
	if err != nil {
		contractFaceError(ctx.Ctx, err)
		return
	}
	respondBestMatch(ctx.Ctx, best, found)
}

func respondBestMatch(ctx any, best *types.BestMatch, found bool) {
	response := types.BatchVerifyResponse{Success: true, MatchFound: found}
	if found {
		match := *best
		match.Distance = biometric.RoundTo(match.Distance, 4)
		match.Confidence = biometric.RoundTo(match.Confidence, 2)
		response.BestMatch = &match
	} else {
		response.Message = utils.GetStringPointer("no matching face found")
	}
	server_response.Responder.RespondRaw(ctx, http.StatusOK, response)
}

func contractFaceError(ctx any, err error) {
	var dimensionErr *types.DimensionMismatchError
	var remoteErr *types.RemoteServiceError
	switch {
	case errors.Is(err, types.ErrNoFaceDetected), errors.Is(err, types.ErrMultipleFaces),
		errors.Is(err, biometric.ErrEmptyGallery), errors.As(err, &dimensionErr):
		contractError(ctx, http.StatusBadRequest, err)
	case errors.As(err, &remoteErr):
		logger.Error("face service call failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		contractError(ctx, http.StatusBadGateway, errors.New("face service unavailable"))
	default:
		logger.Error("face request failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		contractError(ctx, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func contractError(ctx any, status int, err error) {
	server_response.Responder.RespondRaw(ctx, status, types.FaceServiceResponse{
		Success: false,
		Error:   utils.GetStringPointer(err.Error()),
	})
}
