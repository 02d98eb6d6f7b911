package orders

import "time"

type Status string

// Order lifecycle states. pending_review is reachable only through a failed
// stock settlement, never through the status update endpoint.
const (
	StatusPending       Status = "pending"
	StatusProcessing    Status = "processing"
	StatusShipped       Status = "shipped"
	StatusDelivered     Status = "delivered"
	StatusCancelled     Status = "cancelled"
	StatusPendingReview Status = "pending_review"
)

// Order is the persisted order record. Item prices and names are snapshots
// taken at order time and are never re-fetched from the product service.
type Order struct {
	ID            string         `json:"id"`                      // UUID assigned at creation
	UserID        string         `json:"userId"`                  // Owner, from the user-id header
	Items         []OrderItem    `json:"items"`                   // Non-empty
	TotalAmount   float64        `json:"totalAmount"`             // Sum of item subtotals
	Status        Status         `json:"status"`                  //
	CreatedAt     time.Time      `json:"createdAt"`               // Immutable
	UpdatedAt     time.Time      `json:"updatedAt"`               // Set on every mutation
	Error         string         `json:"error,omitempty"`         // Diagnostic, set when settlement degrades
	StockFailures []StockFailure `json:"stockFailures,omitempty"` // Per-item adjustment failures
}

type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"` // Snapshot at order time
	Price       float64 `json:"price"`       // Snapshot at order time
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"` // Always price * quantity
}

// NewOrderItem is the request shape for one line of a new order.
type NewOrderItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// StockAdjustment is a signed stock delta for one product: negative debits
// on creation, positive credits on cancellation. It only lives for the
// duration of a settlement or compensation call.
type StockAdjustment struct {
	ProductID string
	Quantity  int
}

// StockFailure records one stock adjustment that could not be applied.
// Both settlement and compensation failures end up here so degraded orders
// carry a full per-item outcome list for reconciliation.
type StockFailure struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"` // The signed delta that failed
	Reason    string `json:"reason"`
}

// Product is what the inventory collaborator reports for one product.
type Product struct {
	ID    string
	Name  string
	Price float64
	Stock int
}
