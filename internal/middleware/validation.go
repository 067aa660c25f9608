package middleware

import (
	"errors"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/validation"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags to gin's validator
func RegisterValidators(rules *validation.Rules) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return rules.Register(v)
}
