// Package feedback implements the per-order message thread shared by the
// company that placed an order and the farmer supplying it.
package feedback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/comufarm/backend/internal/application/retry"
	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppendInput is a message written by a party on an order
type AppendInput struct {
	OrderID uuid.UUID
	Party   marketplace.Party
	Message string
}

// Service appends to and reads order threads
type Service struct {
	feedbacks marketplace.FeedbackRepository
	orders    marketplace.OrderRepository
	products  marketplace.ProductRepository
	publisher shared.EventPublisher
	retry     retry.Policy
	clock     *monotonicClock
	logger    *zap.Logger
}

// NewService creates a new feedback Service
func NewService(
	feedbacks marketplace.FeedbackRepository,
	orders marketplace.OrderRepository,
	products marketplace.ProductRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := retry.DefaultPolicy()
	policy.Logger = logger
	return &Service{
		feedbacks: feedbacks,
		orders:    orders,
		products:  products,
		retry:     policy,
		clock:     &monotonicClock{},
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for feedback inserts
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetRetryPolicy overrides the retry policy used for reads
func (s *Service) SetRetryPolicy(policy retry.Policy) {
	s.retry = policy
}

// Append adds a message to the order's thread. The sender type is the
// caller's role. Appends are not retried automatically.
func (s *Service) Append(ctx context.Context, input AppendInput) (*marketplace.Feedback, error) {
	if err := s.authorize(ctx, input.OrderID, input.Party); err != nil {
		return nil, err
	}

	fb, err := marketplace.NewFeedback(input.OrderID, input.Party.Role, input.Message)
	if err != nil {
		return nil, err
	}
	fb.CreatedAt = s.clock.now()

	if err := s.feedbacks.Append(ctx, fb); err != nil {
		return nil, err
	}

	s.logger.Debug("Feedback appended",
		zap.String("order_id", fb.OrderID.String()),
		zap.String("sender_type", fb.SenderType.String()),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, marketplace.FeedbackInserted(fb)); err != nil {
			s.logger.Error("Failed to publish feedback event", zap.Error(err))
		}
	}
	return fb, nil
}

// Thread returns every message on the order, oldest first
func (s *Service) Thread(ctx context.Context, orderID uuid.UUID, party marketplace.Party) ([]marketplace.Feedback, error) {
	if err := s.authorize(ctx, orderID, party); err != nil {
		return nil, err
	}

	var thread []marketplace.Feedback
	err := retry.Once(ctx, s.retry, "read_feedback_thread", func(ctx context.Context) error {
		items, err := s.feedbacks.FindByOrder(ctx, orderID)
		thread = items
		return err
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// CheckAccess returns nil when party may read the order's thread
func (s *Service) CheckAccess(ctx context.Context, orderID uuid.UUID, party marketplace.Party) error {
	return s.authorize(ctx, orderID, party)
}

// authorize checks the order exists and the party is one of its sides
func (s *Service) authorize(ctx context.Context, orderID uuid.UUID, party marketplace.Party) error {
	var order *marketplace.Order
	err := retry.Once(ctx, s.retry, "find_order", func(ctx context.Context) error {
		o, err := s.orders.FindByID(ctx, orderID)
		order = o
		return err
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError(shared.CodeNotFound, "Order not found")
		}
		return err
	}

	var product *marketplace.Product
	if party.IsFarmer() {
		product, err = s.products.FindByID(ctx, order.ProductID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
	}

	if !party.CanAccessOrder(order, product) {
		return shared.NewDomainError(shared.CodeForbidden, "Only the ordering company or the supplying farmer can use this thread")
	}
	return nil
}

// monotonicClock hands out strictly increasing timestamps so messages
// written back to back keep their order once stored at microsecond precision.
type monotonicClock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *monotonicClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
