package ordering

import (
	"context"

	"github.com/comufarm/backend/internal/domain/marketplace"
)

// TransactionScope provides transactional access to the placement repositories.
// All repository operations run inside fn share one database transaction and
// are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories touched by a placement,
// all bound to the same transaction.
type TransactionalRepositories interface {
	ProductRepo() marketplace.ProductRepository
	OrderRepo() marketplace.OrderRepository
	SupplyRepo() marketplace.SupplyRepository
}
