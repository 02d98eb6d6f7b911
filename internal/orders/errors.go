package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned by the store when no order exists for an id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrProductNotFound is returned by the inventory collaborator when a
	// referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrNotPending rejects cancellation of orders that already moved on.
	ErrNotPending = errors.New("only pending orders can be cancelled")
)

// ValidationError rejects an order before anything is persisted: a product is
// missing or its stock cannot cover the requested quantity.
type ValidationError struct {
	ProductID string
	Reason    string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StatusValueError rejects a status value outside the settable whitelist.
type StatusValueError struct {
	Value Status
}

func (e *StatusValueError) Error() string {
	return fmt.Sprintf("Invalid status. Valid values: %s", ValidStatusValues())
}

// TransitionError rejects a legal status value that is not reachable from the
// order's current state.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
