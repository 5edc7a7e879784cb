// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"dreamportal/internal/models"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// validAnimations are the floating-object animation presets the portal
// theme can select.
var validAnimations = map[string]bool{
	"animate-pulse":  true,
	"animate-bounce": true,
	"animate-spin":   true,
	"animate-ping":   true,
	"none":           true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("image_fit", validateImageFit)
		_ = v.RegisterValidation("object_animation", validateObjectAnimation)
		_ = v.RegisterValidation("event_date", validateEventDate)
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateImageFit(fl validator.FieldLevel) bool {
	switch models.ImageFit(fl.Field().String()) {
	case models.FitCover, models.FitContain:
		return true
	}
	return false
}

func validateObjectAnimation(fl validator.FieldLevel) bool {
	return validAnimations[fl.Field().String()]
}

func validateEventDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.EventDateLayout, fl.Field().String())
	return err == nil
}
