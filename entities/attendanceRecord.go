package entities

import (
	"time"

	"mruput.io/application/utils"
	"mruput.io/infrastructure/geolocation"
)

type RecordDevice struct {
	DeviceID string `bson:"deviceID" json:"deviceID"`
	Browser  string `bson:"browser" json:"browser"`
	OS       string `bson:"os" json:"os"`
	Mobile   bool   `bson:"mobile" json:"mobile"`
	Raw      string `bson:"raw" json:"-"`
}

type RecordIP struct {
	Address string `bson:"address" json:"address"`
	Country string `bson:"country" json:"country"`
	City    string `bson:"city" json:"city"`
}

// AttendanceRecord is a decided attendance attempt. Rejected attempts are kept
// too, for audit.
type AttendanceRecord struct {
	AttemptID  string `bson:"attemptID" json:"attemptID"`
	UserID     string `bson:"userID" json:"userID"`
	Outcome    string `bson:"outcome" json:"outcome"`
	ReasonCode string `bson:"reasonCode" json:"reasonCode"`
	Message    string `bson:"message" json:"message"`

	Similarity    *float64 `bson:"similarity" json:"similarity"`
	MatchDistance *float64 `bson:"matchDistance" json:"matchDistance"`
	BlinkCount    int      `bson:"blinkCount" json:"blinkCount"`
	LivenessKind  string   `bson:"livenessKind" json:"livenessKind"`

	WorkMode                 string              `bson:"workMode" json:"workMode"`
	OfficeID                 string              `bson:"officeID" json:"officeID"`
	Location                 *geolocation.GeoFix `bson:"location" json:"location"`
	DistanceFromOfficeMeters *float64            `bson:"distanceFromOfficeMeters" json:"distanceFromOfficeMeters"`
	SpoofFlagged             bool                `bson:"spoofFlagged" json:"spoofFlagged"`

	StillBlob *string       `bson:"stillBlob" json:"-"`
	StillURL  *string       `bson:"-" json:"stillURL,omitempty"`
	Device    *RecordDevice `bson:"device" json:"device"`
	IP        *RecordIP     `bson:"ip" json:"ip"`
	DecidedAt time.Time     `bson:"decidedAt" json:"decidedAt"`

	ID        string     `bson:"_id" json:"id"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	DeletedAt *time.Time `bson:"deletedAt" json:"deletedAt"`
}

func (model AttendanceRecord) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		if model.ID == "" {
			model.ID = utils.GenerateUULDString()
		}
	}
	model.UpdatedAt = now
	return &model
}
