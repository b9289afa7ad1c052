package entities

import (
	"time"

	"mruput.io/application/utils"
)

// FaceEnrollment holds the descriptor a user registered with. Descriptors are
// only comparable within one provider and model version.
type FaceEnrollment struct {
	UserID       string    `bson:"userID" json:"userID"`
	Encoding     []float32 `bson:"encoding" json:"-"`
	Provider     string    `bson:"provider" json:"provider"`
	ModelVersion string    `bson:"modelVersion" json:"modelVersion"`

	ID        string     `bson:"_id" json:"id"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	DeletedAt *time.Time `bson:"deletedAt" json:"deletedAt"`
}

func (model FaceEnrollment) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		model.ID = utils.GenerateUULDString()
	}
	model.UpdatedAt = now
	return &model
}
