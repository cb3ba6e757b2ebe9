package persistence

import (
	"context"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplyRepository implements SupplyRepository using GORM
type GormSupplyRepository struct {
	db *gorm.DB
}

// NewGormSupplyRepository creates a new GormSupplyRepository
func NewGormSupplyRepository(db *gorm.DB) *GormSupplyRepository {
	return &GormSupplyRepository{db: db}
}

// FindByOrderID finds the supply entry written for an order
func (r *GormSupplyRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*marketplace.Supply, error) {
	var model models.SupplyModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByFarmer returns the farmer's entries, newest first
func (r *GormSupplyRepository) FindByFarmer(ctx context.Context, farmerID string, limit int) ([]marketplace.Supply, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplyModel{})
	if farmerID != "" {
		query = query.Where("farmer_id = ?", farmerID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.SupplyModel
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	out := make([]marketplace.Supply, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save inserts a supply entry
func (r *GormSupplyRepository) Save(ctx context.Context, supply *marketplace.Supply) error {
	return translateError(r.db.WithContext(ctx).Create(models.SupplyModelFromDomain(supply)).Error)
}

// Ensure GormSupplyRepository implements SupplyRepository
var _ marketplace.SupplyRepository = (*GormSupplyRepository)(nil)
