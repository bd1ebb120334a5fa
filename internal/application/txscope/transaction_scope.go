// Package txscope defines the unit of work shared by the ledger and stock
// services. Every mutating operation runs inside one TransactionScope call.
package txscope

import (
	"context"

	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/inventory"
	"github.com/kegledger/backend/internal/domain/ledger"
	"github.com/kegledger/backend/internal/domain/partner"
)

// TransactionScope provides transactional access to repositories.
// All repository operations inside fn are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to the
// current transaction.
type TransactionalRepositories interface {
	ClientRepo() partner.ClientRepository
	VariantRepo() catalog.VariantRepository
	MovementRepo() ledger.MovementRepository
	StockRepo() inventory.StockRepository
	ReorderRuleRepo() inventory.ReorderRuleRepository
}

// Repositories is a plain bundle of repositories.
type Repositories struct {
	Clients      partner.ClientRepository
	Variants     catalog.VariantRepository
	Movements    ledger.MovementRepository
	Stock        inventory.StockRepository
	ReorderRules inventory.ReorderRuleRepository
}

// NoOpTransactionScope runs fn against fixed repositories without a real
// transaction. Used by unit tests.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs fn without a transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ClientRepo() partner.ClientRepository {
	return s.repos.Clients
}

func (s *NoOpTransactionScope) VariantRepo() catalog.VariantRepository {
	return s.repos.Variants
}

func (s *NoOpTransactionScope) MovementRepo() ledger.MovementRepository {
	return s.repos.Movements
}

func (s *NoOpTransactionScope) StockRepo() inventory.StockRepository {
	return s.repos.Stock
}

func (s *NoOpTransactionScope) ReorderRuleRepo() inventory.ReorderRuleRepository {
	return s.repos.ReorderRules
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
