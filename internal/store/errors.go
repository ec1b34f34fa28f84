package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCart rejects an order request with no lines at all.
var ErrEmptyCart = errors.New("cart is empty")

// ValidationError rejects a malformed cart before any store access.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ProductNotFoundError names the offending cart line's product id.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// ProductInactiveError marks a cart line referencing a deactivated product.
type ProductInactiveError struct {
	ProductID uint
	Name      string
}

func (e *ProductInactiveError) Error() string {
	return fmt.Sprintf("product %q (%d) is inactive", e.Name, e.ProductID)
}

// InsufficientStockError is returned both by the pre-check and by the
// commit-time re-check when a concurrent allocation won the race.
type InsufficientStockError struct {
	ProductID uint
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (%d): requested %d, available %d",
		e.Name, e.ProductID, e.Requested, e.Available)
}

// IsUniqueViolation matches the unique-constraint error text of both sqlite
// and postgres, which is all gorm surfaces for a duplicate key.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "duplicate key")
}
