package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterValidation("workmode", validateWorkMode)
	validate.RegisterValidation("still_image", validateStillImage)
	validate.RegisterValidation("ulid", validateULID)
}

type Validator struct{}

func (v *Validator) ValidateStruct(payload interface{}) *[]error {
	return validateStruct(payload)
}

func (v *Validator) ValidateValue(value any, rules string) error {
	return validateField(value, rules)
}

var ValidatorInstance = Validator{}

func validateStruct(payload interface{}) *[]error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &[]error{err}
	}
	errs := []error{}
	for _, fieldErr := range validationErrs {
		errs = append(errs, errors.New(describe(fieldErr)))
	}
	return &errs
}

func validateField(value any, rules string) error {
	err := validate.Var(value, rules)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return errors.New(describe(validationErrs[0]))
	}
	return err
}

func describe(fieldErr validator.FieldError) string {
	field := fieldErr.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if field == "" {
		field = "value"
	}
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "workmode":
		return fmt.Sprintf("%s must be one of wfo, wfh or field", field)
	case "still_image":
		return fmt.Sprintf("%s must be a base64 encoded jpeg, png or webp image", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fieldErr.Param())
	case "latitude", "longitude":
		return fmt.Sprintf("%s is not a valid %s", field, fieldErr.Tag())
	}
	return fmt.Sprintf("%s failed on the %s rule", field, fieldErr.Tag())
}
