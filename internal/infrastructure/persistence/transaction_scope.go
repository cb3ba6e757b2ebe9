package persistence

import (
	"context"

	"github.com/comufarm/backend/internal/application/ordering"
	"github.com/comufarm/backend/internal/domain/marketplace"
	"gorm.io/gorm"
)

// GormTransactionScope implements ordering.TransactionScope using GORM
// transactions. An error from fn rolls every write back.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ordering.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
	return translateError(err)
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) ProductRepo() marketplace.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderRepo() marketplace.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) SupplyRepo() marketplace.SupplyRepository {
	return NewGormSupplyRepository(r.tx)
}

var (
	_ ordering.TransactionScope          = (*GormTransactionScope)(nil)
	_ ordering.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
