package client

import (
	"errors"
	"fmt"

	cartEntity "storefront.GO/model/entity/cart"
)

var (
	// ErrInvalidQuantity rejects add/update calls with quantity < 1 before
	// any network round trip. User-correctable, never retried.
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")

	// ErrNotFound maps the server's not_found responses (missing cart,
	// item, or product).
	ErrNotFound = errors.New("cart: not found")

	// ErrNoConflict is returned by Resolve when there is no detected
	// conflict to resolve.
	ErrNoConflict = errors.New("cart: no conflict to resolve")

	// ErrResolveInFlight is returned by a second Resolve call while one is
	// already running. The call is a no-op, not queued: a retry is only
	// meaningful after a definitive failure.
	ErrResolveInFlight = errors.New("cart: a resolution is already in flight")
)

// OutOfStockError reports a quantity above available inventory. Raised
// locally by the facade's pre-check and decoded from the server's
// out_of_stock responses alike.
type OutOfStockError struct {
	ProductID uint
	VariantID *uint
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("cart: requested %d of product %d, only %d in stock", e.Requested, e.ProductID, e.Available)
}

// TransferFailedError wraps any failure during a cart transfer. The guest
// cart is untouched; the shopper may retry the same or another strategy.
type TransferFailedError struct {
	Action cartEntity.TransferAction
	Err    error
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("cart: transfer (%s) failed: %v", e.Action, e.Err)
}

func (e *TransferFailedError) Unwrap() error {
	return e.Err
}

// APIError is a cart store response the client has no dedicated type for.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cart store: %s (%d %s)", e.Message, e.Status, e.Code)
}
