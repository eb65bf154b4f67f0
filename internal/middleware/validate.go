package middleware

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const queryParamsKey = "queryParams"

// Validator is a struct that holds the validator instance
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate validates s against its struct tags
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

var shared = NewValidator()

// ValidateBody parses the JSON body into a fresh T per request, validates it
// and stores it in the context for Body.
func ValidateBody[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := new(T)
		if err := c.BodyParser(body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
				"msg":   err.Error(),
			})
		}
		if err := shared.Validate(body); err != nil {
			return validationFailed(c, "Validation failed", err)
		}

		c.Locals("validated", body)
		return c.Next()
	}
}

// ValidateQuery parses query parameters into a fresh T per request, applying
// defaults first, and validates the result.
func ValidateQuery[T any](defaults func(*T)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := new(T)
		if defaults != nil {
			defaults(params)
		}
		if err := c.QueryParser(params); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid query parameters",
				"msg":   err.Error(),
			})
		}
		if err := shared.Validate(params); err != nil {
			return validationFailed(c, "Invalid query parameters", err)
		}

		c.Locals(queryParamsKey, params)
		return c.Next()
	}
}

// Query returns the parameters stored by ValidateQuery.
func Query[T any](c *fiber.Ctx) *T {
	if p, ok := c.Locals(queryParamsKey).(*T); ok {
		return p
	}
	return new(T)
}

// Body returns the body stored by ValidateBody.
func Body[T any](c *fiber.Ctx) *T {
	if b, ok := c.Locals("validated").(*T); ok {
		return b
	}
	return new(T)
}

func validationFailed(c *fiber.Ctx, msg string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg, "msg": err.Error()})
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  msg,
		"fields": fields,
	})
}
