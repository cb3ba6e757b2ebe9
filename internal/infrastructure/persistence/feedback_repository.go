package persistence

import (
	"context"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFeedbackRepository implements FeedbackRepository using GORM
type GormFeedbackRepository struct {
	db *gorm.DB
}

// NewGormFeedbackRepository creates a new GormFeedbackRepository
func NewGormFeedbackRepository(db *gorm.DB) *GormFeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

// Append inserts a message. There is no update path.
func (r *GormFeedbackRepository) Append(ctx context.Context, feedback *marketplace.Feedback) error {
	return translateError(r.db.WithContext(ctx).Create(models.FeedbackModelFromDomain(feedback)).Error)
}

// FindByOrder returns the order's thread oldest first. The id breaks ties
// between messages stamped in the same instant.
func (r *GormFeedbackRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]marketplace.Feedback, error) {
	var rows []models.FeedbackModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	out := make([]marketplace.Feedback, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Ensure GormFeedbackRepository implements FeedbackRepository
var _ marketplace.FeedbackRepository = (*GormFeedbackRepository)(nil)
