package ordering

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// memStore is an in-memory TransactionScope. Transactions are serialized
// and rolled back by restoring a snapshot.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]marketplace.Product
	orders   map[uuid.UUID]marketplace.Order
	supplies map[uuid.UUID]marketplace.Supply

	executeCalls    int
	failExecute     []error
	failSupplySave  error
	beforeDecrement func(products map[uuid.UUID]marketplace.Product)
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[uuid.UUID]marketplace.Product),
		orders:   make(map[uuid.UUID]marketplace.Order),
		supplies: make(map[uuid.UUID]marketplace.Supply),
	}
}

func (m *memStore) addProduct(p *marketplace.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = *p
}

func (m *memStore) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].SupplyAmount
}

func (m *memStore) counts() (orders, supplies int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders), len(m.supplies)
}

func (m *memStore) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.executeCalls++
	if len(m.failExecute) > 0 {
		err := m.failExecute[0]
		m.failExecute = m.failExecute[1:]
		return err
	}

	products := cloneMap(m.products)
	orders := cloneMap(m.orders)
	supplies := cloneMap(m.supplies)

	if err := fn(&memTx{store: m}); err != nil {
		m.products, m.orders, m.supplies = products, orders, supplies
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type memTx struct {
	store *memStore
}

func (t *memTx) ProductRepo() marketplace.ProductRepository { return &memProducts{store: t.store} }
func (t *memTx) OrderRepo() marketplace.OrderRepository     { return &memOrders{store: t.store} }
func (t *memTx) SupplyRepo() marketplace.SupplyRepository   { return &memSupplies{store: t.store} }

// memProducts assumes the store lock is held by Execute
type memProducts struct {
	store *memStore
}

func (r *memProducts) FindByID(_ context.Context, id uuid.UUID) (*marketplace.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]marketplace.Product, error) {
	var out []marketplace.Product
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProducts) FindAll(context.Context, marketplace.ProductFilter) ([]marketplace.Product, error) {
	return nil, nil
}

func (r *memProducts) Count(context.Context, marketplace.ProductFilter) (int64, error) {
	return int64(len(r.store.products)), nil
}

func (r *memProducts) FindAvailable(context.Context) ([]marketplace.Product, error) {
	return nil, nil
}

func (r *memProducts) Save(_ context.Context, p *marketplace.Product) error {
	r.store.products[p.ID] = *p
	return nil
}

func (r *memProducts) DecrementStock(_ context.Context, id uuid.UUID, quantity int) (bool, error) {
	if r.store.beforeDecrement != nil {
		r.store.beforeDecrement(r.store.products)
	}
	p, ok := r.store.products[id]
	if !ok || p.SupplyAmount < quantity {
		return false, nil
	}
	p.SupplyAmount -= quantity
	p.Version++
	r.store.products[id] = p
	return true, nil
}

type memOrders struct {
	store  *memStore
	locked bool
}

func (r *memOrders) lock() func() {
	if !r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *memOrders) FindByID(_ context.Context, id uuid.UUID) (*marketplace.Order, error) {
	defer r.lock()()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &o, nil
}

func (r *memOrders) FindByIdempotencyKey(_ context.Context, key string) (*marketplace.Order, error) {
	defer r.lock()()
	for _, o := range r.store.orders {
		if o.IdempotencyKey == key {
			found := o
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrders) FindAll(context.Context, marketplace.OrderFilter) ([]marketplace.Order, error) {
	defer r.lock()()
	out := make([]marketplace.Order, 0, len(r.store.orders))
	for _, o := range r.store.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memOrders) Count(context.Context, marketplace.OrderFilter) (int64, error) {
	defer r.lock()()
	return int64(len(r.store.orders)), nil
}

func (r *memOrders) Save(_ context.Context, o *marketplace.Order) error {
	defer r.lock()()
	if o.IdempotencyKey != "" {
		for _, existing := range r.store.orders {
			if existing.IdempotencyKey == o.IdempotencyKey {
				return shared.NewDomainError(shared.CodeConflict, "duplicate idempotency key")
			}
		}
	}
	r.store.orders[o.ID] = *o
	return nil
}

type memSupplies struct {
	store *memStore
}

func (r *memSupplies) FindByOrderID(_ context.Context, orderID uuid.UUID) (*marketplace.Supply, error) {
	for _, s := range r.store.supplies {
		if s.OrderID == orderID {
			found := s
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memSupplies) FindByFarmer(context.Context, string, int) ([]marketplace.Supply, error) {
	return nil, nil
}

func (r *memSupplies) Save(_ context.Context, s *marketplace.Supply) error {
	if r.store.failSupplySave != nil {
		return r.store.failSupplySave
	}
	r.store.supplies[s.ID] = *s
	return nil
}

// fakeClaims is an in-memory IdempotencyStore. held maps a key to the
// token of its claim.
type fakeClaims struct {
	mu       sync.Mutex
	held     map[string]string
	err      error
	release  int
	released []string
	next     int
}

func newFakeClaims() *fakeClaims {
	return &fakeClaims{held: make(map[string]string)}
}

func (c *fakeClaims) Claim(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", false, c.err
	}
	if _, ok := c.held[key]; ok {
		return "", false, nil
	}
	c.next++
	token := fmt.Sprintf("claim-%d", c.next)
	c.held[key] = token
	return token, true, nil
}

func (c *fakeClaims) IsClaimed(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.held[key]
	return ok, nil
}

func (c *fakeClaims) Release(_ context.Context, key, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held[key] == token {
		delete(c.held, key)
	}
	c.release++
	c.released = append(c.released, token)
	return nil
}

func (c *fakeClaims) Close() error { return nil }

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (r *countingRecorder) RecordPlacement(outcome string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[string]int)
	}
	r.outcomes[outcome]++
}
