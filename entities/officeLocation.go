package entities

import (
	"time"

	"mruput.io/application/utils"
	"mruput.io/infrastructure/geolocation"
)

type OfficeLocation struct {
	Name             string   `bson:"name" json:"name"`
	Latitude         float64  `bson:"latitude" json:"latitude"`
	Longitude        float64  `bson:"longitude" json:"longitude"`
	RadiusMeters     float64  `bson:"radiusMeters" json:"radiusMeters"`
	IsActive         bool     `bson:"isActive" json:"isActive"`
	SupervisorEmails []string `bson:"supervisorEmails" json:"-"`

	ID        string     `bson:"_id" json:"id"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	DeletedAt *time.Time `bson:"deletedAt" json:"deletedAt"`
}

func (model OfficeLocation) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		model.ID = utils.GenerateUULDString()
	}
	model.UpdatedAt = now
	return &model
}

func (model *OfficeLocation) ToOffice() *geolocation.Office {
	return &geolocation.Office{
		ID:           model.ID,
		Name:         model.Name,
		Latitude:     model.Latitude,
		Longitude:    model.Longitude,
		RadiusMeters: model.RadiusMeters,
		IsActive:     model.IsActive,
	}
}
