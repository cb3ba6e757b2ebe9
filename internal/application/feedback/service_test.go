package feedback

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*marketplace.Order, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter marketplace.OrderFilter) ([]marketplace.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter marketplace.OrderFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *marketplace.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]marketplace.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]marketplace.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter marketplace.ProductFilter) ([]marketplace.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]marketplace.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter marketplace.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindAvailable(ctx context.Context) ([]marketplace.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]marketplace.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *marketplace.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Bool(0), args.Error(1)
}

// memFeedbacks stores threads in memory
type memFeedbacks struct {
	mu       sync.Mutex
	items    []marketplace.Feedback
	readErrs []error
}

func (r *memFeedbacks) Append(_ context.Context, f *marketplace.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *f)
	return nil
}

func (r *memFeedbacks) FindByOrder(_ context.Context, orderID uuid.UUID) ([]marketplace.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.readErrs) > 0 {
		err := r.readErrs[0]
		r.readErrs = r.readErrs[1:]
		return nil, err
	}
	var out []marketplace.Feedback
	for _, f := range r.items {
		if f.OrderID == orderID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fixture struct {
	svc       *Service
	orders    *MockOrderRepository
	products  *MockProductRepository
	feedbacks *memFeedbacks
	product   *marketplace.Product
	company   marketplace.Party
	farmer    marketplace.Party
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	window := marketplace.SupplyWindow{
		Start: marketplace.NewDate(2024, time.June, 1),
		End:   marketplace.NewDate(2024, time.June, 30),
	}
	product, err := marketplace.NewProduct("farmer-1", "감자", 100, window, decimal.Zero)
	require.NoError(t, err)

	f := &fixture{
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		feedbacks: &memFeedbacks{},
		product:   product,
		company:   marketplace.Party{ID: "company-1", Role: marketplace.SenderCompany},
		farmer:    marketplace.Party{ID: "farmer-1", Role: marketplace.SenderFarmer},
	}
	f.svc = NewService(f.feedbacks, f.orders, f.products, nil)
	f.svc.retry.Delay = 0
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil).Maybe()
	return f
}

func (f *fixture) newOrder(t *testing.T) *marketplace.Order {
	t.Helper()
	order, err := marketplace.NewOrder(f.product, f.company.ID, 5, marketplace.NewDate(2024, time.June, 10), "")
	require.NoError(t, err)
	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	return order
}

func TestService_ThreadKeepsOrderAndIsolation(t *testing.T) {
	f := newFixture(t)
	x := f.newOrder(t)
	y := f.newOrder(t)
	ctx := context.Background()

	_, err := f.svc.Append(ctx, AppendInput{OrderID: x.ID, Party: f.company, Message: "hi"})
	require.NoError(t, err)
	_, err = f.svc.Append(ctx, AppendInput{OrderID: y.ID, Party: f.company, Message: "other order"})
	require.NoError(t, err)
	_, err = f.svc.Append(ctx, AppendInput{OrderID: x.ID, Party: f.farmer, Message: "ok"})
	require.NoError(t, err)

	thread, err := f.svc.Thread(ctx, x.ID, f.company)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "hi", thread[0].Message)
	assert.Equal(t, marketplace.SenderCompany, thread[0].SenderType)
	assert.Equal(t, "ok", thread[1].Message)
	assert.Equal(t, marketplace.SenderFarmer, thread[1].SenderType)
	assert.True(t, thread[0].CreatedAt.Before(thread[1].CreatedAt))

	other, err := f.svc.Thread(ctx, y.ID, f.farmer)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "other order", other[0].Message)
}

func TestService_Append(t *testing.T) {
	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()
		f.orders.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Append(context.Background(), AppendInput{OrderID: id, Party: f.company, Message: "hi"})
		assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		f := newFixture(t)
		order := f.newOrder(t)
		stranger := marketplace.Party{ID: "company-9", Role: marketplace.SenderCompany}

		_, err := f.svc.Append(context.Background(), AppendInput{OrderID: order.ID, Party: stranger, Message: "hi"})
		assert.Equal(t, shared.CodeForbidden, shared.CodeOf(err))
		assert.Empty(t, f.feedbacks.items)
	})

	t.Run("blank message", func(t *testing.T) {
		f := newFixture(t)
		order := f.newOrder(t)

		_, err := f.svc.Append(context.Background(), AppendInput{OrderID: order.ID, Party: f.farmer, Message: "   "})
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("publishes insert", func(t *testing.T) {
		f := newFixture(t)
		order := f.newOrder(t)
		pub := &capturePublisher{}
		f.svc.SetEventPublisher(pub)

		_, err := f.svc.Append(context.Background(), AppendInput{OrderID: order.ID, Party: f.company, Message: "hi"})
		require.NoError(t, err)
		require.Len(t, pub.events, 1)
		assert.Equal(t, "feedbacks.insert", pub.events[0].EventType())
	})
}

func TestService_ThreadRetriesOnce(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder(t)
	f.feedbacks.readErrs = []error{shared.ErrUnavailable}

	thread, err := f.svc.Thread(context.Background(), order.ID, f.company)
	require.NoError(t, err)
	assert.Empty(t, thread)

	f.feedbacks.readErrs = []error{shared.ErrUnavailable, shared.ErrUnavailable}
	_, err = f.svc.Thread(context.Background(), order.ID, f.company)
	assert.True(t, errors.Is(err, shared.ErrUnavailable))
}

func TestMonotonicClock(t *testing.T) {
	c := &monotonicClock{}
	prev := c.now()
	for i := 0; i < 1000; i++ {
		next := c.now()
		require.True(t, next.After(prev))
		prev = next
	}
}

type capturePublisher struct {
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}
