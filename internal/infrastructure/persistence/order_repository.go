package persistence

import (
	"context"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIdempotencyKey finds the order placed under key
func (r *GormOrderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*marketplace.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of orders
func (r *GormOrderRepository) FindAll(ctx context.Context, filter marketplace.OrderFilter) ([]marketplace.Order, error) {
	var rows []models.OrderModel
	query := r.scope(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	query = applyPaging(query, filter.Filter, OrderSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	out := make([]marketplace.Order, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter marketplace.OrderFilter) (int64, error) {
	var count int64
	query := r.scope(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// Save inserts an order. Orders are immutable once placed.
func (r *GormOrderRepository) Save(ctx context.Context, order *marketplace.Order) error {
	model := models.OrderModelFromDomain(order)
	return translateError(r.db.WithContext(ctx).Create(model).Error)
}

func (r *GormOrderRepository) scope(query *gorm.DB, filter marketplace.OrderFilter) *gorm.DB {
	if filter.CompanyID != "" {
		query = query.Where("company_id = ?", filter.CompanyID)
	}
	if filter.FarmerID != "" {
		query = query.Where("product_id IN (?)",
			r.db.Model(&models.ProductModel{}).Select("id").Where("farmer_id = ?", filter.FarmerID))
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ marketplace.OrderRepository = (*GormOrderRepository)(nil)
