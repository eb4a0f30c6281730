package holders

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the `holder_type` binding tag to gin's validator.
// It must run before the first request is bound; later calls return the first result.
func RegisterValidators() error {
	registerOnce.Do(func() {
		registerErr = registerOn(binding.Validator.Engine())
	})
	return registerErr
}

func registerOn(engine any) error {
	v, ok := engine.(*validator.Validate)
	if !ok {
		return fmt.Errorf("holders: binding engine is %T, not *validator.Validate", engine)
	}
	if err := v.RegisterValidation("holder_type", validHolderType); err != nil {
		return fmt.Errorf("holders: register holder_type: %w", err)
	}
	return nil
}

func validHolderType(fl validator.FieldLevel) bool {
	_, err := ParseType(fl.Field().String())
	return err == nil
}
