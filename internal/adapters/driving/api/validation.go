package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/ragserve/internal/core/domain"
)

// validate checks request structs. The "userid" tag enforces the user id
// format used for per-user directories.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
		return domain.IsValidUserID(fl.Field().String())
	})
	return v
}

// userQuery carries the user_id query parameter.
type userQuery struct {
	UserID string `validate:"required,userid"`
}

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Messages string `json:"messages" validate:"required"`
}

// checkStruct validates s and converts failures into a domain.ErrValidation
// naming the offending fields.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch name {
	case "UserID":
		name = "user_id"
	case "Messages":
		name = "messages"
	}

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "userid":
		return name + " must start with a letter or digit and contain only letters, digits, '.', '_' or '-'"
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}
