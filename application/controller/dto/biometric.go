package dto

import (
	"mruput.io/infrastructure/biometric/types"
)

// Requests of the face service contract. Field names follow the wire format
// shared with the remote delegate.

type FaceImageDTO struct {
	Image string `json:"image" validate:"required,still_image"`
}

type VerifyFaceDTO struct {
	Image          string    `json:"image" validate:"required,still_image"`
	StoredEncoding []float64 `json:"stored_encoding" validate:"required"`
	Threshold      *float64  `json:"threshold" validate:"omitempty,gt=0,lte=2"`
}

type BatchVerifyDTO struct {
	Image     string                   `json:"image" validate:"required,still_image"`
	Encodings []types.BatchEncodingDTO `json:"encodings" validate:"required,min=1,max=5000"`
	Threshold *float64                 `json:"threshold" validate:"omitempty,gt=0,lte=2"`
}

type IdentifyDTO struct {
	Image     string   `json:"image" validate:"required,still_image"`
	Threshold *float64 `json:"threshold" validate:"omitempty,gt=0,lte=2"`
}

func (d *BatchVerifyDTO) Gallery() []types.GalleryEntry {
	gallery := make([]types.GalleryEntry, 0, len(d.Encodings))
	for _, encoding := range d.Encodings {
		gallery = append(gallery, types.GalleryEntry{ID: encoding.ID, Encoding: types.FromFloat64(encoding.Encoding)})
	}
	return gallery
}
