// Package orderdb persists orders in Redis, the single source of truth for
// order state. Besides the order record itself it maintains two set indices:
// one per user and one global.
package orderdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"order-service/internal/orders"

	"github.com/redis/go-redis/v9"
)

const allOrdersKey = "orders:all"

func orderKey(orderID string) string {
	return "order:" + orderID
}

func userOrdersKey(userID string) string {
	return "user:" + userID + ":orders"
}

type Conf struct {
	client *redis.Client
}

// NewConf connects to Redis and verifies the connection with a ping before
// handing the store out. Callers own the lifecycle and must Close it.
func NewConf(redisURL string) (*Conf, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Conf{client: client}, nil
}

func (c *Conf) Close() error {
	return c.client.Close()
}

func (c *Conf) GetOrder(ctx context.Context, orderID string) (orders.Order, error) {
	data, err := c.client.Get(ctx, orderKey(orderID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return orders.Order{}, orders.ErrOrderNotFound
		}
		return orders.Order{}, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}

	var order orders.Order
	if err := json.Unmarshal([]byte(data), &order); err != nil {
		return orders.Order{}, fmt.Errorf("failed to unmarshal order %s: %w", orderID, err)
	}
	return order, nil
}

func (c *Conf) SaveOrder(ctx context.Context, o orders.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal order %s: %w", o.ID, err)
	}
	if err := c.client.Set(ctx, orderKey(o.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set order %s: %w", o.ID, err)
	}
	return nil
}

func (c *Conf) AddUserOrder(ctx context.Context, userID, orderID string) error {
	if err := c.client.SAdd(ctx, userOrdersKey(userID), orderID).Err(); err != nil {
		return fmt.Errorf("failed to add order %s to user index: %w", orderID, err)
	}
	return nil
}

func (c *Conf) AddGlobalOrder(ctx context.Context, orderID string) error {
	if err := c.client.SAdd(ctx, allOrdersKey, orderID).Err(); err != nil {
		return fmt.Errorf("failed to add order %s to global index: %w", orderID, err)
	}
	return nil
}

func (c *Conf) OrderIDsByUser(ctx context.Context, userID string) ([]string, error) {
	ids, err := c.client.SMembers(ctx, userOrdersKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return ids, nil
}

func (c *Conf) AllOrderIDs(ctx context.Context) ([]string, error) {
	ids, err := c.client.SMembers(ctx, allOrdersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list all orders: %w", err)
	}
	return ids, nil
}
