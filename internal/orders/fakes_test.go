package orders

import (
	"context"
	"sync"
)

// fakeStore is an in-memory Store for orchestrator tests.
type fakeStore struct {
	mu          sync.Mutex
	orders      map[string]Order
	userIndex   map[string][]string
	globalIndex []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:    make(map[string]Order),
		userIndex: make(map[string][]string),
	}
}

func (s *fakeStore) GetOrder(_ context.Context, orderID string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (s *fakeStore) SaveOrder(_ context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	return nil
}

func (s *fakeStore) AddUserOrder(_ context.Context, userID, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userIndex[userID] = append(s.userIndex[userID], orderID)
	return nil
}

func (s *fakeStore) AddGlobalOrder(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalIndex = append(s.globalIndex, orderID)
	return nil
}

func (s *fakeStore) OrderIDsByUser(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.userIndex[userID]...), nil
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// fakeInventory is an in-memory Inventory. Adjustments mutate stock so tests
// can observe debits and credits. failAdjust forces per-product adjustment
// failures; gate, when set, blocks adjustments until the channel is closed.
type fakeInventory struct {
	mu          sync.Mutex
	products    map[string]Product
	failAdjust  map[string]error
	adjustments []StockAdjustment
	gate        chan struct{}
}

func newFakeInventory(products ...Product) *fakeInventory {
	inv := &fakeInventory{
		products:   make(map[string]Product),
		failAdjust: make(map[string]error),
	}
	for _, p := range products {
		inv.products[p.ID] = p
	}
	return inv
}

func (f *fakeInventory) FetchProduct(_ context.Context, productID string) (Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (f *fakeInventory) AdjustStock(_ context.Context, productID string, quantity int) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failAdjust[productID]; err != nil {
		return err
	}
	p := f.products[productID]
	p.Stock += quantity
	f.products[productID] = p
	f.adjustments = append(f.adjustments, StockAdjustment{ProductID: productID, Quantity: quantity})
	return nil
}

func (f *fakeInventory) stockOf(productID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[productID].Stock
}

func (f *fakeInventory) recordedAdjustments() []StockAdjustment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]StockAdjustment(nil), f.adjustments...)
}
