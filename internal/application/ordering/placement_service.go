package ordering

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/comufarm/backend/internal/application/retry"
	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/comufarm/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const claimKeyPrefix = "order:placement:"

// PlacementConfig tunes order placement
type PlacementConfig struct {
	// AttemptTimeout bounds one transactional attempt. Zero disables it.
	AttemptTimeout time.Duration
	// RetryEnabled allows one automatic retry of a keyed placement after a
	// timeout or unavailable store
	RetryEnabled bool
	RetryDelay   time.Duration
	// ClaimTTL is how long an in-flight idempotency key stays claimed
	ClaimTTL time.Duration
}

// DefaultPlacementConfig returns the default placement configuration
func DefaultPlacementConfig() PlacementConfig {
	return PlacementConfig{
		AttemptTimeout: 5 * time.Second,
		RetryEnabled:   true,
		RetryDelay:     100 * time.Millisecond,
		ClaimTTL:       30 * time.Second,
	}
}

// PlacementService places orders. A placement validates the request, then
// inserts the order, inserts its supply entry and decrements stock in a
// single transaction. The decrement is conditional on the stored stock so
// concurrent orders can never overdraw a product.
type PlacementService struct {
	scope     TransactionScope
	orders    marketplace.OrderRepository
	claims    shared.IdempotencyStore
	publisher shared.EventPublisher
	recorder  PlacementRecorder
	config    PlacementConfig
	logger    *zap.Logger
}

// PlacementOption configures a PlacementService
type PlacementOption func(*PlacementService)

// WithClaimStore sets the store used to claim in-flight idempotency keys
func WithClaimStore(store shared.IdempotencyStore) PlacementOption {
	return func(s *PlacementService) {
		s.claims = store
	}
}

// WithEventPublisher sets the publisher for committed changes
func WithEventPublisher(publisher shared.EventPublisher) PlacementOption {
	return func(s *PlacementService) {
		s.publisher = publisher
	}
}

// WithRecorder sets the placement metrics recorder
func WithRecorder(recorder PlacementRecorder) PlacementOption {
	return func(s *PlacementService) {
		s.recorder = recorder
	}
}

// WithConfig overrides the placement configuration
func WithConfig(cfg PlacementConfig) PlacementOption {
	return func(s *PlacementService) {
		s.config = cfg
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) PlacementOption {
	return func(s *PlacementService) {
		s.logger = logger
	}
}

// NewPlacementService creates a new PlacementService
func NewPlacementService(scope TransactionScope, orders marketplace.OrderRepository, opts ...PlacementOption) *PlacementService {
	s := &PlacementService{
		scope:  scope,
		orders: orders,
		config: DefaultPlacementConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Place validates and commits an order.
//
// Errors: VALIDATION_ERROR for a malformed request, NOT_FOUND, OUT_OF_WINDOW,
// INSUFFICIENT_STOCK (also when stock ran out between the check and the
// commit), CONFLICT when an idempotency key is in flight or was used for a
// different order, and TIMEOUT or UNAVAILABLE when storage fails. A keyed
// request that fails with TIMEOUT or UNAVAILABLE is retried once as a whole.
func (s *PlacementService) Place(ctx context.Context, input PlaceOrderInput) (result *PlacementResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_placement", "place",
		attribute.String("product_id", input.ProductID.String()),
		attribute.Int("quantity", input.Quantity),
		attribute.Bool("keyed", input.IdempotencyKey != ""),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	date, err := s.validateInput(input)
	if err != nil {
		s.record(shared.CodeOf(err), input.Quantity)
		return nil, err
	}

	keyed := input.IdempotencyKey != ""
	if keyed {
		replayed, err := s.replay(ctx, input, date)
		if err != nil || replayed != nil {
			s.recordResult(replayed, err, input.Quantity)
			return replayed, err
		}

		release, err := s.claim(ctx, input.IdempotencyKey)
		if err != nil {
			s.record(shared.CodeOf(err), input.Quantity)
			return nil, err
		}
		defer release()
	}

	policy := retry.Policy{Enabled: keyed && s.config.RetryEnabled, Delay: s.config.RetryDelay, Logger: s.logger}
	err = retry.Once(ctx, policy, "place_order", func(ctx context.Context) error {
		r, err := s.placeOnce(ctx, input, date)
		result = r
		return err
	})
	if err != nil && keyed && errors.Is(err, shared.ErrConflict) {
		// Another request with the same key committed first
		replayed, replayErr := s.replay(ctx, input, date)
		if replayErr != nil || replayed != nil {
			s.recordResult(replayed, replayErr, input.Quantity)
			return replayed, replayErr
		}
	}
	if err != nil {
		s.logger.Info("Order placement rejected",
			zap.String("product_id", input.ProductID.String()),
			zap.Int("quantity", input.Quantity),
			zap.String("code", shared.CodeOf(err)),
			zap.Error(err),
		)
		s.record(shared.CodeOf(err), input.Quantity)
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", result.Order.ID.String()),
		zap.String("product_id", result.Product.ID.String()),
		zap.Int("quantity", result.Order.Quantity),
		zap.Int("remaining", result.Product.SupplyAmount),
	)
	s.record(OutcomePlaced, input.Quantity)
	s.publish(ctx, result)
	return result, nil
}

// placeOnce runs one transactional attempt
func (s *PlacementService) placeOnce(ctx context.Context, input PlaceOrderInput, date marketplace.Date) (*PlacementResult, error) {
	if s.config.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.AttemptTimeout)
		defer cancel()
	}

	var result *PlacementResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError(shared.CodeNotFound, "Product not found")
			}
			return err
		}

		if err := marketplace.Validate(product, input.Quantity, date); err != nil {
			return err
		}

		order, err := marketplace.NewOrder(product, input.CompanyID, input.Quantity, date, input.IdempotencyKey)
		if err != nil {
			return err
		}

		// The guard is re-evaluated against the row as stored now, not as read above
		ok, err := repos.ProductRepo().DecrementStock(ctx, product.ID, input.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return shared.NewDomainError(shared.CodeInsufficientStock, "Stock changed before the order could be committed")
		}

		if err := repos.OrderRepo().Save(ctx, order); err != nil {
			return err
		}

		supply := marketplace.NewSupply(product, order)
		if err := repos.SupplyRepo().Save(ctx, supply); err != nil {
			return err
		}

		committed, err := repos.ProductRepo().FindByID(ctx, product.ID)
		if err != nil {
			return err
		}

		result = &PlacementResult{Order: order, Supply: supply, Product: committed}
		return nil
	})
	if err != nil {
		return nil, normalizeError(ctx, err)
	}
	return result, nil
}

func (s *PlacementService) validateInput(input PlaceOrderInput) (marketplace.Date, error) {
	if strings.TrimSpace(input.CompanyID) == "" {
		return marketplace.Date{}, shared.NewDomainError(shared.CodeValidation, "Company ID cannot be empty")
	}
	if err := marketplace.ValidateQuantity(input.Quantity); err != nil {
		return marketplace.Date{}, err
	}
	date, err := marketplace.ParseDate(input.OrderDate)
	if err != nil {
		return marketplace.Date{}, err
	}
	if err := marketplace.ValidateIdempotencyKey(input.IdempotencyKey); err != nil {
		return marketplace.Date{}, err
	}
	return date, nil
}

// replay returns the order already committed for the request's key, a
// CONFLICT if the key belongs to a different order, or nil when the key is
// unused.
func (s *PlacementService) replay(ctx context.Context, input PlaceOrderInput, date marketplace.Date) (*PlacementResult, error) {
	var existing *marketplace.Order
	err := retry.Once(ctx, retry.Policy{Enabled: s.config.RetryEnabled, Delay: s.config.RetryDelay, Logger: s.logger}, "find_order_by_key",
		func(ctx context.Context) error {
			o, err := s.orders.FindByIdempotencyKey(ctx, input.IdempotencyKey)
			existing = o
			return err
		})
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, normalizeError(ctx, err)
	}
	if !existing.SameRequest(input.ProductID, input.CompanyID, input.Quantity, date) {
		return nil, shared.NewDomainError(shared.CodeConflict, "Idempotency key was already used for a different order")
	}
	return s.loadReplay(ctx, existing)
}

// loadReplay completes a replayed order with its supply entry and the
// product as it stands now, so a replay has the shape of the first answer.
func (s *PlacementService) loadReplay(ctx context.Context, order *marketplace.Order) (*PlacementResult, error) {
	result := &PlacementResult{Order: order, Replayed: true}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		supply, err := repos.SupplyRepo().FindByOrderID(ctx, order.ID)
		if err != nil {
			return err
		}
		product, err := repos.ProductRepo().FindByID(ctx, order.ProductID)
		if err != nil {
			return err
		}
		result.Supply = supply
		result.Product = product
		return nil
	})
	if err != nil {
		return nil, normalizeError(ctx, err)
	}
	return result, nil
}

// claim marks the key as in flight. The returned func releases it.
func (s *PlacementService) claim(ctx context.Context, key string) (func(), error) {
	noop := func() {}
	if s.claims == nil {
		return noop, nil
	}

	token, claimed, err := s.claims.Claim(ctx, claimKeyPrefix+key, s.config.ClaimTTL)
	if err != nil {
		// The unique index on orders still prevents duplicates
		s.logger.Warn("Idempotency store unavailable, relying on database uniqueness",
			zap.String("idempotency_key", key),
			zap.Error(err),
		)
		return noop, nil
	}
	if !claimed {
		return nil, shared.NewDomainError(shared.CodeConflict, "A request with this idempotency key is already in progress")
	}

	return func() {
		if err := s.claims.Release(context.WithoutCancel(ctx), claimKeyPrefix+key, token); err != nil {
			s.logger.Warn("Failed to release idempotency claim",
				zap.String("idempotency_key", key),
				zap.Error(err),
			)
		}
	}, nil
}

func (s *PlacementService) publish(ctx context.Context, result *PlacementResult) {
	if s.publisher == nil {
		return
	}
	events := []shared.DomainEvent{
		marketplace.OrderInserted(result.Order, result.Product),
		marketplace.SupplyInserted(result.Supply),
		marketplace.ProductChanged(marketplace.ChangeUpdate, result.Product),
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish placement events",
			zap.String("order_id", result.Order.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *PlacementService) recordResult(result *PlacementResult, err error, quantity int) {
	if err != nil {
		s.record(shared.CodeOf(err), quantity)
		return
	}
	s.record(OutcomeReplayed, quantity)
}

func (s *PlacementService) record(outcome string, quantity int) {
	if s.recorder == nil {
		return
	}
	if outcome == "" {
		outcome = "error"
	}
	s.recorder.RecordPlacement(strings.ToLower(outcome), quantity)
}

// normalizeError turns context failures into domain errors
func normalizeError(ctx context.Context, err error) error {
	if shared.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return shared.NewDomainError(shared.CodeTimeout, "Order placement timed out")
	}
	return err
}
