package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// validate is the package-level validator instance.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("currency", validateCurrency)
	_ = v.RegisterValidation("locale", validateLocale)

	return v
}

// validateCurrency accepts ISO 4217 codes known to golang.org/x/text.
func validateCurrency(fl validator.FieldLevel) bool {
	_, err := currency.ParseISO(fl.Field().String())
	return err == nil
}

// validateLocale accepts BCP 47 language tags.
func validateLocale(fl validator.FieldLevel) bool {
	_, err := language.Parse(fl.Field().String())
	return err == nil
}

// currencySymbol returns the narrow symbol for an ISO code, falling back to the code.
func currencySymbol(code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code
	}

	// Formatted amounts render as "<symbol> <number>".
	formatted := fmt.Sprint(currency.NarrowSymbol(unit.Amount(0)))
	if i := strings.IndexByte(formatted, ' '); i > 0 {
		return formatted[:i]
	}

	return code
}

// Validate validates the configuration and returns an error if invalid.
// Validation fails fast - the service should not start with invalid config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors converts validator errors to a readable format.
func formatValidationErrors(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// formatFieldError formats a single field validation error.
func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "datetime":
		return fmt.Sprintf("%s must match the layout %s", field, e.Param())
	case "currency":
		return fmt.Sprintf("%s must be an ISO 4217 currency code", field)
	case "locale":
		return fmt.Sprintf("%s must be a BCP 47 language tag", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath converts "Config.Server.Port" to "server.port".
func formatFieldPath(namespace string) string {
	// Remove the root struct name (Config.)
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	// Convert to lowercase
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}
