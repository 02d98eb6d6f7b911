package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"order-service/pkg/logkey"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Store is the key-value persistence the orchestrator commits orders to.
// Single-key operations are assumed atomic; nothing here is transactional
// across keys.
type Store interface {
	GetOrder(ctx context.Context, orderID string) (Order, error)
	SaveOrder(ctx context.Context, o Order) error
	AddUserOrder(ctx context.Context, userID, orderID string) error
	AddGlobalOrder(ctx context.Context, orderID string) error
	OrderIDsByUser(ctx context.Context, userID string) ([]string, error)
}

// Inventory is the collaborator contract against the product service.
// AdjustStock must apply the delta atomically relative to concurrent
// adjustments on the same product; the orchestrator does not serialize calls.
type Inventory interface {
	FetchProduct(ctx context.Context, productID string) (Product, error)
	AdjustStock(ctx context.Context, productID string, quantity int) error
}

const defaultSettleTimeout = 10 * time.Second

// Conf orchestrates order creation, settlement and cancellation against the
// store and the inventory collaborator.
type Conf struct {
	store Store
	inv   Inventory

	settleTimeout time.Duration
	settling      sync.WaitGroup
}

func NewConf(store Store, inv Inventory) (*Conf, error) {
	if store == nil {
		return nil, fmt.Errorf("order store is nil")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory client is nil")
	}
	return &Conf{
		store:         store,
		inv:           inv,
		settleTimeout: defaultSettleTimeout,
	}, nil
}

// Wait blocks until all in-flight settlements have finished. Called on
// shutdown so degraded orders are not lost mid-write.
func (c *Conf) Wait() {
	c.settling.Wait()
}

// CreateOrder validates the requested items against live inventory, commits
// the order as pending and kicks off stock settlement in the background.
//
// Validation is all-or-nothing: every item is fetched concurrently and the
// first failure rejects the whole request before anything is persisted. Once
// the three store writes succeed the order exists no matter what settlement
// does afterwards.
func (c *Conf) CreateOrder(ctx context.Context, traceId, userID string, items []NewOrderItem) (Order, error) {
	orderItems, totalAmount, err := c.validateItems(ctx, items)
	if err != nil {
		return Order{}, err
	}

	now := time.Now().UTC()
	order := Order{
		ID:          uuid.NewString(),
		UserID:      userID,
		Items:       orderItems,
		TotalAmount: totalAmount,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Commit boundary: order record plus both membership indices. After this
	// point settlement failure degrades the order, it never deletes it.
	if err := c.store.SaveOrder(ctx, order); err != nil {
		return Order{}, fmt.Errorf("failed to save order: %w", err)
	}
	if err := c.store.AddUserOrder(ctx, userID, order.ID); err != nil {
		return Order{}, fmt.Errorf("failed to index order for user: %w", err)
	}
	if err := c.store.AddGlobalOrder(ctx, order.ID); err != nil {
		return Order{}, fmt.Errorf("failed to index order globally: %w", err)
	}

	// Settlement runs detached from the request so order confirmation never
	// waits on a slow or failing inventory service.
	c.settling.Add(1)
	go func() {
		defer c.settling.Done()
		settleCtx, cancel := context.WithTimeout(context.Background(), c.settleTimeout)
		defer cancel()
		c.settleStock(settleCtx, traceId, order)
	}()

	return order, nil
}

// validateItems fetches every product concurrently and materializes the
// order item snapshots. The errgroup is a join barrier with fail-fast
// semantics: the first product that is missing or under-stocked cancels the
// rest and surfaces alone.
func (c *Conf) validateItems(ctx context.Context, items []NewOrderItem) ([]OrderItem, float64, error) {
	orderItems := make([]OrderItem, len(items))

	g, gCtx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			product, err := c.inv.FetchProduct(gCtx, item.ProductID)
			if err != nil {
				if errors.Is(err, ErrProductNotFound) {
					return &ValidationError{
						ProductID: item.ProductID,
						Reason:    fmt.Sprintf("Product %s not found", item.ProductID),
					}
				}
				return fmt.Errorf("failed to fetch product %s: %w", item.ProductID, err)
			}
			if product.Stock < item.Quantity {
				return &ValidationError{
					ProductID: item.ProductID,
					Reason:    fmt.Sprintf("Insufficient stock for product %s", product.Name),
				}
			}
			orderItems[i] = OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Price:       product.Price,
				Quantity:    item.Quantity,
				Subtotal:    product.Price * float64(item.Quantity),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var totalAmount float64
	for _, item := range orderItems {
		totalAmount += item.Subtotal
	}
	return orderItems, totalAmount, nil
}

// settleStock debits inventory for every item of a freshly committed order.
// Failures do not roll the order back and are not retried here; the order is
// demoted to pending_review with a per-item failure list and left for manual
// reconciliation.
func (c *Conf) settleStock(ctx context.Context, traceId string, order Order) {
	debits := make([]StockAdjustment, 0, len(order.Items))
	for _, item := range order.Items {
		debits = append(debits, StockAdjustment{ProductID: item.ProductID, Quantity: -item.Quantity})
	}

	failures := c.adjustStockBarrier(ctx, debits)
	if len(failures) == 0 {
		return
	}

	for _, f := range failures {
		slog.Error("stock settlement failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, order.ID), slog.String("Product ID", f.ProductID),
			slog.String(logkey.ERROR, f.Reason))
	}

	order.Status = StatusPendingReview
	order.Error = "Stock update failed - requires manual review"
	order.StockFailures = append(order.StockFailures, failures...)
	order.UpdatedAt = time.Now().UTC()

	if err := c.store.SaveOrder(ctx, order); err != nil {
		slog.Error("failed to save degraded order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, order.ID), slog.String(logkey.ERROR, err.Error()))
	}
}

// CancelOrder cancels a pending order and restores stock for its items.
// Compensation is best effort: credit failures are logged and recorded on the
// order, but the order reaches cancelled unconditionally.
func (c *Conf) CancelOrder(ctx context.Context, traceId, orderID string) (Order, error) {
	order, err := c.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if order.Status != StatusPending {
		return Order{}, ErrNotPending
	}

	credits := make([]StockAdjustment, 0, len(order.Items))
	for _, item := range order.Items {
		credits = append(credits, StockAdjustment{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	failures := c.adjustStockBarrier(ctx, credits)
	for _, f := range failures {
		slog.Error("stock restore failed during cancellation", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, order.ID), slog.String("Product ID", f.ProductID),
			slog.String(logkey.ERROR, f.Reason))
	}

	order.Status = StatusCancelled
	order.StockFailures = append(order.StockFailures, failures...)
	order.UpdatedAt = time.Now().UTC()

	if err := c.store.SaveOrder(ctx, order); err != nil {
		return Order{}, fmt.Errorf("failed to save cancelled order: %w", err)
	}
	return order, nil
}

// adjustStockBarrier fans the adjustments out concurrently and waits for the
// full set, collecting a failure per item that could not be applied.
func (c *Conf) adjustStockBarrier(ctx context.Context, adjustments []StockAdjustment) []StockFailure {
	var mu sync.Mutex
	var failures []StockFailure

	var wg sync.WaitGroup
	for _, adj := range adjustments {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.inv.AdjustStock(ctx, adj.ProductID, adj.Quantity); err != nil {
				mu.Lock()
				failures = append(failures, StockFailure{
					ProductID: adj.ProductID,
					Quantity:  adj.Quantity,
					Reason:    err.Error(),
				})
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return failures
}

// UpdateOrderStatus applies a caller-requested status change, checking the
// settable whitelist first and then the transition table.
func (c *Conf) UpdateOrderStatus(ctx context.Context, orderID string, requested Status) (Order, error) {
	order, err := c.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !IsSettable(requested) {
		return Order{}, &StatusValueError{Value: requested}
	}
	if !CanTransition(order.Status, requested) {
		return Order{}, &TransitionError{From: order.Status, To: requested}
	}

	order.Status = requested
	order.UpdatedAt = time.Now().UTC()

	if err := c.store.SaveOrder(ctx, order); err != nil {
		return Order{}, fmt.Errorf("failed to save order status: %w", err)
	}
	return order, nil
}
