// Package validation registers the API's custom binding tags with gin's
// validator.
package validation

import (
	"fmt"
	"strings"
	"sync"

	"saas-template/internal/domain/creators"
	"saas-template/internal/domain/products"
	"saas-template/internal/domain/subscribers"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var once sync.Once

// Register installs billing_interval, creator_status and subscriber_status.
// Safe to call more than once.
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Warn().Msg("gin validator engine is not go-playground, custom tags not registered")
			return
		}
		if err := register(v); err != nil {
			log.Fatal().Err(err).Msg("register validation tags")
		}
	})
}

// register adds the domain enums plus "currency", which accepts ISO 4217
// codes in either case.
func register(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		"billing_interval":  products.ValidInterval,
		"creator_status":    creators.ValidStatus,
		"subscriber_status": subscribers.ValidStatus,
		"currency": func(s string) bool {
			return v.Var(strings.ToUpper(s), "iso4217") == nil
		},
	}
	for tag, fn := range rules {
		fn := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}
