package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds products by IDs; missing IDs are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]marketplace.Product, error) {
	if len(ids) == 0 {
		return []marketplace.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return productsToDomain(rows), nil
}

// FindAll returns a page of products
func (r *GormProductRepository) FindAll(ctx context.Context, filter marketplace.ProductFilter) ([]marketplace.Product, error) {
	var rows []models.ProductModel
	query := r.scope(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	query = applyPaging(query, filter.Filter, ProductSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return productsToDomain(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter marketplace.ProductFilter) (int64, error) {
	var count int64
	query := r.scope(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// FindAvailable returns products that still have stock
func (r *GormProductRepository) FindAvailable(ctx context.Context) ([]marketplace.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("supply_amount > 0").
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return productsToDomain(rows), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *marketplace.Product) error {
	model := models.ProductModelFromDomain(product)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// DecrementStock subtracts quantity in one conditional UPDATE. The WHERE
// clause carries the stock guard, so two writers can never both pass it.
func (r *GormProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, fmt.Errorf("decrement quantity must be positive, got %d", quantity)
	}
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND supply_amount >= ?", id, quantity).
		Updates(map[string]any{
			"supply_amount": gorm.Expr("supply_amount - ?", quantity),
			"version":       gorm.Expr("version + 1"),
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *GormProductRepository) scope(query *gorm.DB, filter marketplace.ProductFilter) *gorm.DB {
	if filter.FarmerID != "" {
		query = query.Where("farmer_id = ?", filter.FarmerID)
	}
	return query
}

func productsToDomain(rows []models.ProductModel) []marketplace.Product {
	out := make([]marketplace.Product, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormProductRepository implements ProductRepository
var _ marketplace.ProductRepository = (*GormProductRepository)(nil)
