package pricing

import (
	"fmt"

	"github.com/nexvpn/backend/internal/models"
)

// MissingExchangeRateError is returned when a conversion is requested for a
// currency whose rate is zero or not configured. Conversion never silently
// falls back to a default rate.
type MissingExchangeRateError struct {
	Currency models.Currency
}

func (e *MissingExchangeRateError) Error() string {
	return fmt.Sprintf("missing exchange rate for currency %s", e.Currency)
}

// ValidationError is returned when a pricing input is outside its allowed
// range. Settings updates are validated at the admin boundary; this guards
// the few inputs that arrive from request payloads directly.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
