package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mruput.io/application/utils"
	"mruput.io/infrastructure/geolocation"
	"mruput.io/infrastructure/validator"
)

func TestPushLocationDTO_ToReport(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	report := (&PushLocationDTO{Error: LocationErrorPermissionDenied}).ToReport(now)
	assert.ErrorIs(t, report.Err, geolocation.ErrPermissionDenied)
	assert.Nil(t, report.Fix)

	report = (&PushLocationDTO{Error: LocationErrorTimeout}).ToReport(now)
	assert.ErrorIs(t, report.Err, geolocation.ErrTimeout)

	report = (&PushLocationDTO{Latitude: utils.GetFloat64Pointer(-6.2)}).ToReport(now)
	assert.ErrorIs(t, report.Err, geolocation.ErrSignalUnavailable)

	taken := now.Add(-2 * time.Second)
	report = (&PushLocationDTO{
		Latitude:       utils.GetFloat64Pointer(-6.2),
		Longitude:      utils.GetFloat64Pointer(106.8),
		AccuracyMeters: 12,
		IsMocked:       true,
		Timestamp:      &taken,
	}).ToReport(now)
	assert.NoError(t, report.Err)
	assert.Equal(t, -6.2, report.Fix.Latitude)
	assert.True(t, report.Fix.IsMocked)
	assert.Equal(t, taken, report.Fix.Timestamp)

	report = (&PushLocationDTO{Latitude: utils.GetFloat64Pointer(0), Longitude: utils.GetFloat64Pointer(0)}).ToReport(now)
	assert.Equal(t, now, report.Fix.Timestamp)
}

func TestPushLocationDTO_Validation(t *testing.T) {
	valid := []PushLocationDTO{
		{Latitude: utils.GetFloat64Pointer(-6.2), Longitude: utils.GetFloat64Pointer(106.8), AccuracyMeters: 5},
		{Error: LocationErrorUnavailable},
	}
	for _, body := range valid {
		assert.Nil(t, validator.ValidatorInstance.ValidateStruct(&body))
	}

	invalid := []PushLocationDTO{
		{},
		{Latitude: utils.GetFloat64Pointer(91), Longitude: utils.GetFloat64Pointer(0)},
		{Latitude: utils.GetFloat64Pointer(0), Longitude: utils.GetFloat64Pointer(0), AccuracyMeters: -1},
		{Error: "gps_off"},
	}
	for _, body := range invalid {
		assert.NotNil(t, validator.ValidatorInstance.ValidateStruct(&body), "%+v", body)
	}
}

func TestStartAttemptDTO_Validation(t *testing.T) {
	assert.Nil(t, validator.ValidatorInstance.ValidateStruct(&StartAttemptDTO{SessionID: "kiosk-1", WorkMode: "field"}))
	assert.NotNil(t, validator.ValidatorInstance.ValidateStruct(&StartAttemptDTO{SessionID: "kiosk-1", WorkMode: "office"}))
	assert.NotNil(t, validator.ValidatorInstance.ValidateStruct(&StartAttemptDTO{WorkMode: "wfo"}))
}

func TestAttendanceHistoryQuery_Validation(t *testing.T) {
	assert.Nil(t, validator.ValidatorInstance.ValidateStruct(&AttendanceHistoryQuery{Limit: 20, LastID: utils.GetStringPointer(utils.GenerateUULDString())}))
	assert.NotNil(t, validator.ValidatorInstance.ValidateStruct(&AttendanceHistoryQuery{LastID: utils.GetStringPointer("not-a-ulid")}))
	assert.NotNil(t, validator.ValidatorInstance.ValidateStruct(&AttendanceHistoryQuery{Limit: 500}))
}
