package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// GetOrder looks a single order up by id.
func (c *Conf) GetOrder(ctx context.Context, orderID string) (Order, error) {
	return c.store.GetOrder(ctx, orderID)
}

// ListOrders returns the user's orders, newest first. Index entries whose
// order record has gone missing are skipped rather than failing the listing.
func (c *Conf) ListOrders(ctx context.Context, userID string) ([]Order, error) {
	orderIDs, err := c.store.OrderIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order ids for user: %w", err)
	}

	list := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		order, err := c.store.GetOrder(ctx, id)
		if err != nil {
			if errors.Is(err, ErrOrderNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to fetch order %s: %w", id, err)
		}
		list = append(list, order)
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		// Deterministic order for equal timestamps.
		return list[i].ID < list[j].ID
	})
	return list, nil
}
