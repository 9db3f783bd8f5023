package handlers

import (
	"fmt"

	"busbooking/internal/domain/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs custom binding rules on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case models.MethodVisaMastercard, models.MethodAmericanExpress:
			return true
		}
		return false
	})
}
