package validator

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustom installs domain validation tags on gin's binding engine.
// Call once at startup, before any request binding happens.
func RegisterCustom() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine")
	}

	// "timeofday" accepts zero-padded 24h HH:MM values.
	if err := v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	}); err != nil {
		return fmt.Errorf("failed to register timeofday validator: %w", err)
	}

	return nil
}
