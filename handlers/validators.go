package handlers

import (
	"solace/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the enum validators used by request
// binding tags.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("situationcategory", func(fl validator.FieldLevel) bool {
		return models.ValidCategory(fl.Field().String())
	})
	v.RegisterValidation("situationurgency", func(fl validator.FieldLevel) bool {
		return models.ValidUrgency(fl.Field().String())
	})
}
