package config

import (
	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return errorwrapper.NewValidationError(first.Namespace(), first.Value(), "failed on '"+first.Tag()+"' rule")
		}
		return errorwrapper.WrapError(err, "config validation")
	}
	return nil
}
