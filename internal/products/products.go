// Package products is the typed client for the external product/inventory
// service. The service is resolved through Consul by name, with a static URL
// override for local runs and tests.
package products

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"order-service/internal/consul"
	"order-service/internal/orders"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/sethvargo/go-retry"
)

const (
	defaultCallTimeout = 3 * time.Second
	maxRetries         = 2
	retryBase          = 100 * time.Millisecond
)

type Conf struct {
	consulClient *consulapi.Client
	serviceName  string
	baseURL      string // overrides consul discovery when set
	httpClient   *http.Client
	callTimeout  time.Duration
}

// NewConf builds the inventory client. Either a Consul client with a service
// name or a static base URL must be provided.
func NewConf(consulClient *consulapi.Client, serviceName, baseURL string) (*Conf, error) {
	if consulClient == nil && baseURL == "" {
		return nil, fmt.Errorf("either a consul client or a product service URL is required")
	}
	return &Conf{
		consulClient: consulClient,
		serviceName:  serviceName,
		baseURL:      baseURL,
		httpClient:   &http.Client{},
		callTimeout:  defaultCallTimeout,
	}, nil
}

type productPayload struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type productResponse struct {
	Success bool           `json:"success"`
	Data    productPayload `json:"data"`
	Error   string         `json:"error"`
}

type stockUpdateRequest struct {
	Quantity int `json:"quantity"`
}

func (c *Conf) resolveBaseURL() (string, error) {
	if c.baseURL != "" {
		return c.baseURL, nil
	}
	address, port, err := consul.GetServiceAddress(c.consulClient, c.serviceName)
	if err != nil {
		return "", fmt.Errorf("product service unavailable: %w", err)
	}
	return fmt.Sprintf("http://%s:%d", address, port), nil
}

// FetchProduct returns the current product record, or
// orders.ErrProductNotFound when the id is unknown. Transient failures are
// retried with exponential backoff before giving up.
func (c *Conf) FetchProduct(ctx context.Context, productID string) (orders.Product, error) {
	baseURL, err := c.resolveBaseURL()
	if err != nil {
		return orders.Product{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var payload productPayload
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/products/%s", baseURL, productID), nil)
		if err != nil {
			return fmt.Errorf("error creating request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("error fetching product service: %w", err))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return orders.ErrProductNotFound
		case resp.StatusCode >= http.StatusInternalServerError:
			return retry.RetryableError(fmt.Errorf("product service returned %s", resp.Status))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("product service returned %s", resp.Status)
		}

		var productResp productResponse
		if err := json.NewDecoder(resp.Body).Decode(&productResp); err != nil {
			return fmt.Errorf("error decoding product response: %w", err)
		}
		if !productResp.Success {
			return orders.ErrProductNotFound
		}
		payload = productResp.Data
		return nil
	})
	if err != nil {
		return orders.Product{}, err
	}

	return orders.Product{
		ID:    payload.ID,
		Name:  payload.Name,
		Price: payload.Price,
		Stock: payload.Stock,
	}, nil
}

// AdjustStock applies a signed delta to a product's stock. The product
// service applies the delta atomically; this client only bounds the call with
// a timeout and a small retry budget. Exhausting the budget means the
// adjustment failed.
func (c *Conf) AdjustStock(ctx context.Context, productID string, quantity int) error {
	baseURL, err := c.resolveBaseURL()
	if err != nil {
		return err
	}

	body, err := json.Marshal(stockUpdateRequest{Quantity: quantity})
	if err != nil {
		return fmt.Errorf("error marshalling stock update: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
			fmt.Sprintf("%s/products/%s/stock", baseURL, productID), bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("error creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("error calling product service: %w", err))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return retry.RetryableError(fmt.Errorf("product service returned %s", resp.Status))
		case resp.StatusCode >= http.StatusBadRequest:
			return fmt.Errorf("stock adjustment rejected for product %s: %s", productID, resp.Status)
		}
		return nil
	})
}
