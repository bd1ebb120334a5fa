package ledger

import (
	"strconv"
	"strings"

	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// parseQuantity reads a required integer quantity. Blank input reads as zero
// so equipment-only lines can omit it; anything else malformed is refused.
func parseQuantity(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// parseOptionalAmount reads an optional money override. Decimal commas are
// accepted. Blank or non-numeric input returns nil so the default applies; a
// negative amount is a validation error.
func parseOptionalAmount(field, raw string) (*decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, nil
	}
	if d.IsNegative() {
		return nil, shared.NewValidationError("%s cannot be negative (got %s)", field, raw)
	}
	return &d, nil
}
