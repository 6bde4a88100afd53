package auth

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jrsteele09/storefront-api/internal/errors"
)

// RegisterRequest carries the five fields local registration requires
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest holds either a Google ID token or an authorization code
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required_without=Code"`
	Code    string `json:"code" validate:"required_without=IDToken"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validateRequest(req any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(req); err != nil {
		return errors.Kind(errors.ErrValidation, err)
	}
	return nil
}
