package server

import (
	"errors"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// registerValidators adds the custom tags to gin's binding validator.
func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = errors.New("unexpected binding validator engine")
			return
		}
		validatorsErr = v.RegisterValidation("username", validateUsername)
	})
	return validatorsErr
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// fieldRule maps a failed validation tag on a field to a client message.
type fieldRule struct {
	Field   string
	Tag     string
	Message string
}

// bindJSON binds the request body. On failure it reports the message of the
// first rule, in rule order, that matches a failed field. Malformed bodies
// report the first rule's message.
func bindJSON(c *gin.Context, req any, rules []fieldRule) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, rule := range rules {
			for _, fe := range verrs {
				if fe.Field() == rule.Field && fe.Tag() == rule.Tag {
					return validationError(rule.Message)
				}
			}
		}
	}
	if len(rules) == 0 {
		return validationError("Invalid request")
	}
	return validationError(rules[0].Message)
}
