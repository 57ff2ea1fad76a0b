package middleware

import (
	"net/http"

	"github.com/fotitos/backend/internal/httperror"
	"github.com/fotitos/backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationMiddleware checks request payloads against their schema before the
// image pipeline runs
type ValidationMiddleware struct {
	validate *validator.Validate
}

// NewValidationMiddleware creates a new ValidationMiddleware
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{validate: validator.New()}
}

// RegisterValidation validates the registration form fields, rejecting the
// request with 406 before any image processing happens
func (m *ValidationMiddleware) RegisterValidation(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.RegisterUserRequest
		if err := c.Bind(&req); err != nil {
			return httperror.New(http.StatusNotAcceptable, "Not Acceptable", "Invalid request payload")
		}
		if err := m.validate.Struct(req); err != nil {
			return httperror.New(http.StatusNotAcceptable, "Not Acceptable", err.Error())
		}
		return next(c)
	}
}
