package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/apperr"
)

var ErrInvalidBody = apperr.Validation("Invalid request body")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report the JSON name of a field instead of the Go name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// respondError writes err as {"error": message} with the status of its kind.
func respondError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	switch kind {
	case apperr.KindInternal, apperr.KindUpstream:
		log.Errorf("[API] %s %s: %v", c.Method(), c.Path(), err)
	case apperr.KindUnavailable:
		log.Warnf("[API] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(kind.Status()).JSON(fiber.Map{"error": apperr.PublicMessage(err)})
}

// parseBody decodes the JSON body into out and runs its struct tag checks.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Wrap(apperr.KindValidation, ErrInvalidBody.Message, err)
	}
	if err := validate.Struct(out); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Wrap(apperr.KindValidation, ErrInvalidBody.Message, err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Validation(fmt.Sprintf("%s is required", fe.Field()))
	case "max":
		return apperr.Validation(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return apperr.Validation(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

// firstNonEmpty returns the first non-blank value, for payloads that accept
// both snake_case and camelCase keys.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ClientIP resolves the caller address. Cloudflare and reverse proxy
// headers are only read when the connecting peer is a trusted proxy
// (fiber.Config.TrustedProxies with EnableTrustedProxyCheck).
func ClientIP(c *fiber.Ctx) string {
	if c.IsProxyTrusted() {
		if ip := strings.TrimSpace(c.Get("CF-Connecting-IP")); ip != "" {
			return ip
		}
		if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
			if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	return strings.TrimPrefix(c.IP(), "::ffff:")
}
