package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"

	"mruput.io/application/utils"
	"mruput.io/infrastructure/geolocation"
)

func validateWorkMode(fl validator.FieldLevel) bool {
	return geolocation.WorkMode(fl.Field().String()).Valid()
}

func validateStillImage(fl validator.FieldLevel) bool {
	_, err := utils.DecodeBase64Image(fl.Field().String())
	return err == nil
}

func validateULID(fl validator.FieldLevel) bool {
	_, err := ulid.ParseStrict(fl.Field().String())
	return err == nil
}
