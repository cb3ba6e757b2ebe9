// Package catalog serves product registration and the read side of the
// marketplace: product, order and supply listings.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/comufarm/backend/internal/application/retry"
	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	maxPageSize       = 100
	supplyExportLimit = 10000
	exportURLLifetime = 15 * time.Minute
)

// Service implements catalog use cases
type Service struct {
	products  marketplace.ProductRepository
	orders    marketplace.OrderRepository
	supplies  marketplace.SupplyRepository
	storage   ObjectStorage
	publisher shared.EventPublisher
	retry     retry.Policy
	locale    language.Tag
	logger    *zap.Logger
}

// NewService creates a new catalog Service
func NewService(
	products marketplace.ProductRepository,
	orders marketplace.OrderRepository,
	supplies marketplace.SupplyRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := retry.DefaultPolicy()
	policy.Logger = logger
	return &Service{
		products: products,
		orders:   orders,
		supplies: supplies,
		retry:    policy,
		locale:   language.Korean,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for product inserts
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetObjectStorage enables supply log export
func (s *Service) SetObjectStorage(storage ObjectStorage) {
	s.storage = storage
}

// SetRetryPolicy overrides the retry policy used for reads
func (s *Service) SetRetryPolicy(policy retry.Policy) {
	s.retry = policy
}

// RegisterProduct records a farmer's new offer
func (s *Service) RegisterProduct(ctx context.Context, party marketplace.Party, input RegisterProductInput) (*marketplace.Product, error) {
	if !party.IsFarmer() {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Only farmers can register products")
	}

	start, err := marketplace.ParseDate(input.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := marketplace.ParseDate(input.EndDate)
	if err != nil {
		return nil, err
	}
	window, err := marketplace.NewSupplyWindow(start, end)
	if err != nil {
		return nil, err
	}

	price := decimal.Zero
	if strings.TrimSpace(input.UnitPrice) != "" {
		price, err = decimal.NewFromString(strings.TrimSpace(input.UnitPrice))
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeValidation, "Unit price must be a decimal number")
		}
	}

	product, err := marketplace.NewProduct(party.ID, input.Name, input.SupplyAmount, window, price)
	if err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product registered",
		zap.String("product_id", product.ID.String()),
		zap.String("farmer_id", product.FarmerID),
		zap.Int("supply_amount", product.SupplyAmount),
	)
	s.publish(ctx, marketplace.ProductChanged(marketplace.ChangeInsert, product))
	return product, nil
}

// GetProduct returns one product
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*marketplace.Product, error) {
	var product *marketplace.Product
	err := retry.Once(ctx, s.retry, "get_product", func(ctx context.Context) error {
		p, err := s.products.FindByID(ctx, id)
		product = p
		return err
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Product not found")
		}
		return nil, err
	}
	return product, nil
}

// ListProducts returns products, newest first
func (s *Service) ListProducts(ctx context.Context, query ListQuery) (*shared.Paginated[marketplace.Product], error) {
	filter := marketplace.ProductFilter{Filter: pageFilter(query), FarmerID: query.FarmerID}

	var (
		items []marketplace.Product
		total int64
	)
	err := retry.Once(ctx, s.retry, "list_products", func(ctx context.Context) error {
		var err error
		if items, err = s.products.FindAll(ctx, filter); err != nil {
			return err
		}
		total, err = s.products.Count(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListAvailable returns products with stock left, ordered by name the way
// a Korean speaker would sort them
func (s *Service) ListAvailable(ctx context.Context) ([]marketplace.Product, error) {
	var items []marketplace.Product
	err := retry.Once(ctx, s.retry, "list_available_products", func(ctx context.Context) error {
		var err error
		items, err = s.products.FindAvailable(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	col := collate.New(s.locale)
	sort.SliceStable(items, func(i, j int) bool {
		return col.CompareString(items[i].Name, items[j].Name) < 0
	})
	return items, nil
}

// CheckOrder runs the same validation placement uses, without writing.
// It lets a client decide whether to enable ordering.
func (s *Service) CheckOrder(ctx context.Context, productID uuid.UUID, quantity int, orderDate string) error {
	if err := marketplace.ValidateQuantity(quantity); err != nil {
		return err
	}
	date, err := marketplace.ParseDate(orderDate)
	if err != nil {
		return err
	}

	var product *marketplace.Product
	err = retry.Once(ctx, s.retry, "check_order", func(ctx context.Context) error {
		p, err := s.products.FindByID(ctx, productID)
		product = p
		return err
	})
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return marketplace.Validate(product, quantity, date)
}

// ListOrders returns the party's orders, newest first. Companies see the
// orders they placed, farmers see orders on their products.
func (s *Service) ListOrders(ctx context.Context, party marketplace.Party, query ListQuery) (*shared.Paginated[OrderView], error) {
	filter := marketplace.OrderFilter{Filter: pageFilter(query)}
	switch {
	case party.IsCompany():
		filter.CompanyID = party.ID
	case party.IsFarmer():
		filter.FarmerID = party.ID
	default:
		return nil, shared.ErrForbidden
	}

	var (
		orders []marketplace.Order
		total  int64
		names  map[uuid.UUID]string
	)
	err := retry.Once(ctx, s.retry, "list_orders", func(ctx context.Context) error {
		var err error
		if orders, err = s.orders.FindAll(ctx, filter); err != nil {
			return err
		}
		if total, err = s.orders.Count(ctx, filter); err != nil {
			return err
		}
		names, err = s.productNames(ctx, orders)
		return err
	})
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, len(orders))
	for i, o := range orders {
		name, ok := names[o.ProductID]
		if !ok {
			name = "알 수 없음"
		}
		views[i] = OrderView{Order: o, ProductName: name}
	}
	page := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListSupplies returns the farmer's supply log, newest first
func (s *Service) ListSupplies(ctx context.Context, party marketplace.Party, limit int) ([]marketplace.Supply, error) {
	if !party.IsFarmer() {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Only farmers have a supply log")
	}
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	var items []marketplace.Supply
	err := retry.Once(ctx, s.retry, "list_supplies", func(ctx context.Context) error {
		var err error
		items, err = s.supplies.FindByFarmer(ctx, party.ID, limit)
		return err
	})
	return items, err
}

// ExportSupplyLog writes the farmer's full supply log as a text file to
// object storage and returns a temporary download link
func (s *Service) ExportSupplyLog(ctx context.Context, party marketplace.Party) (*ExportResult, error) {
	if !party.IsFarmer() {
		return nil, shared.NewDomainError(shared.CodeForbidden, "Only farmers have a supply log")
	}
	if s.storage == nil {
		return nil, shared.NewDomainError(shared.CodeUnavailable, "Supply log export is not configured")
	}

	var items []marketplace.Supply
	err := retry.Once(ctx, s.retry, "export_supplies", func(ctx context.Context) error {
		var err error
		items, err = s.supplies.FindByFarmer(ctx, party.ID, supplyExportLimit)
		return err
	})
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.TextLog)
		b.WriteByte('\n')
	}

	key := fmt.Sprintf("supply-logs/%s/%s.txt", party.ID, time.Now().UTC().Format("20060102T150405Z"))
	if err := s.storage.Upload(ctx, key, []byte(b.String()), "text/plain; charset=utf-8"); err != nil {
		s.logger.Error("Failed to upload supply log", zap.String("key", key), zap.Error(err))
		return nil, shared.NewDomainError(shared.CodeUnavailable, "Could not store the supply log")
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, exportURLLifetime)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeUnavailable, "Could not sign the download link")
	}

	return &ExportResult{StorageKey: key, URL: url, ExpiresAt: expiresAt, Lines: len(items)}, nil
}

func (s *Service) productNames(ctx context.Context, orders []marketplace.Order) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]struct{}, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.ProductID]; !ok {
			seen[o.ProductID] = struct{}{}
			ids = append(ids, o.ProductID)
		}
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish catalog events", zap.Error(err))
	}
}

func pageFilter(query ListQuery) shared.Filter {
	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	return filter
}
