package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/application/txscope"
	"github.com/kegledger/backend/internal/domain/ledger"
	"github.com/kegledger/backend/internal/domain/partner"
	"github.com/kegledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ClientAccountService serves the per-client projections and guards client
// deletion.
type ClientAccountService struct {
	scope          txscope.TransactionScope
	clientRepo     partner.ClientRepository
	movementRepo   ledger.MovementRepository
	stockWatcher   StockWatcher
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewClientAccountService creates a new ClientAccountService
func NewClientAccountService(
	scope txscope.TransactionScope,
	clientRepo partner.ClientRepository,
	movementRepo ledger.MovementRepository,
	logger *zap.Logger,
) *ClientAccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientAccountService{
		scope:        scope,
		clientRepo:   clientRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// SetStockWatcher sets the watcher notified after stock changes
func (s *ClientAccountService) SetStockWatcher(w StockWatcher) {
	s.stockWatcher = w
}

// SetEventPublisher sets the event publisher
func (s *ClientAccountService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Summary computes open quantities, deposit split, delivered volume and
// billed amount, and equipment on loan for one client. Negative balances are
// reported in Anomalies and logged, never corrected.
func (s *ClientAccountService) Summary(ctx context.Context, clientID uuid.UUID) (*ClientSummaryResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	lines, err := s.movementRepo.LinesByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	summary := ledger.Summarize(clientID, lines)
	if len(summary.Anomalies) > 0 {
		logAnomalies(s.logger, clientID, summary.Anomalies)
	}
	return &ClientSummaryResponse{ClientName: client.Name, ClientSummary: summary}, nil
}

// CanDeleteClient runs the deletion guard without deleting anything.
func (s *ClientAccountService) CanDeleteClient(ctx context.Context, clientID uuid.UUID) (*ledger.DeletionCheck, error) {
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	lines, err := s.movementRepo.LinesByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	check := ledger.CheckDeletion(lines)
	return &check, nil
}

// DeleteClient removes a settled client with its ledger. The guard is
// re-evaluated under the client row lock; every movement's stock effect is
// reversed before the rows go. Either all of it commits or nothing does.
func (s *ClientAccountService) DeleteClient(ctx context.Context, clientID uuid.UUID) error {
	var (
		client  *partner.Client
		removed []*ledger.Movement
	)
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		c, err := repos.ClientRepo().FindByIDForUpdate(ctx, clientID)
		if err != nil {
			return err
		}
		lines, err := repos.MovementRepo().LinesByClient(ctx, clientID)
		if err != nil {
			return err
		}
		if check := ledger.CheckDeletion(lines); check.Blocked {
			return shared.NewBusinessRuleViolation(
				fmt.Sprintf("client %q cannot be deleted while balances are open", c.Name),
				check.Reasons...,
			)
		}

		movements, err := repos.MovementRepo().FindByClient(ctx, clientID)
		if err != nil {
			return err
		}
		for i := range movements {
			removed = append(removed, &movements[i])
		}
		for variantID, delta := range stockDeltas(removed, -1) {
			if err := repos.StockRepo().Increment(ctx, variantID, delta); err != nil {
				return err
			}
		}
		if _, err := repos.MovementRepo().DeleteByClient(ctx, clientID); err != nil {
			return err
		}
		if err := repos.ClientRepo().Delete(ctx, clientID); err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("client deleted",
		zap.String("client_id", clientID.String()),
		zap.String("name", client.Name),
		zap.Int("movements", len(removed)),
	)
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, partner.NewClientDeletedEvent(client, len(removed))); err != nil {
			s.logger.Error("failed to publish client deleted event", zap.Error(err))
		}
	}
	if s.stockWatcher != nil {
		var ids []uuid.UUID
		for id := range stockDeltas(removed, -1) {
			ids = append(ids, id)
		}
		if len(ids) > 0 {
			s.stockWatcher.CheckThresholds(ctx, ids)
		}
	}
	return nil
}
