// Package handler exposes the HTTP API on top of the service layer.
package handler

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/restoboost/internal/model"
	"github.com/fairyhunter13/restoboost/internal/service"
)

// formatValidationError converts the first validator error into a client
// message naming the JSON field.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return "invalid request: " + field + " is required"
	case "notblank":
		return "invalid request: " + field + " cannot be whitespace only"
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
		case reflect.Slice:
			return "invalid request: " + field + " must contain at most " + fe.Param() + " items"
		}
		return "invalid request: " + field + " must be at most " + fe.Param()
	case "gte":
		return "invalid request: " + field + " must be at least " + fe.Param()
	case "lte":
		return "invalid request: " + field + " must be at most " + fe.Param()
	case "gt":
		return "invalid request: " + field + " must be greater than " + fe.Param()
	case "clock":
		return "invalid request: " + field + " must be a time in HH:MM format"
	case "isodate":
		return "invalid request: " + field + " must be a date in YYYY-MM-DD format"
	case "phone":
		return "invalid request: " + field + " must be a valid phone number"
	case "email":
		return "invalid request: " + field + " must be a valid email address"
	case "bookingstatus":
		return "invalid request: " + field + " must be one of confirmed, cancelled, completed, no_show"
	}
	return "invalid request: " + field + " is invalid"
}

// bind parses the request body into dst and validates it. On failure it
// returns the message to send with 400.
func bind(c *fiber.Ctx, v *validator.Validate, dst any) (string, bool) {
	if err := c.BodyParser(dst); err != nil {
		return "invalid request body", false
	}
	if err := v.Struct(dst); err != nil {
		return formatValidationError(err), false
	}
	return "", true
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(model.Fail(msg))
}

// errorStatus maps service sentinels to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrRestaurantNotFound),
		errors.Is(err, service.ErrDiscountRuleNotFound),
		errors.Is(err, service.ErrBookingNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrSlotFull),
		errors.Is(err, service.ErrRuleOverlap),
		errors.Is(err, service.ErrCodeConflict):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidTimeWindow),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrBookingInPast),
		errors.Is(err, service.ErrEmptyCode),
		errors.Is(err, service.ErrBookingAlreadyUsed),
		errors.Is(err, service.ErrBookingNotConfirmed),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, service.ErrImageTooLarge),
		errors.Is(err, service.ErrPhotoIndex):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as an error envelope. Unexpected errors are logged
// with msg and hidden from the client.
func respondError(c *fiber.Ctx, err error, msg string) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg(msg)
		return c.Status(status).JSON(model.Fail("internal server error"))
	}
	return c.Status(status).JSON(model.Fail(err.Error()))
}

// paramID parses a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter. A missing value
// yields nil.
func queryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New("invalid request: " + key + " must be an integer")
	}
	return &n, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *fiber.Ctx, key string) (*model.Date, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, errors.New("invalid request: " + key + " must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
