package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/application/txscope"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/inventory"
	"github.com/kegledger/backend/internal/domain/ledger"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/kegledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StockService maintains the cached stock per variant and its reorder rules
type StockService struct {
	scope          txscope.TransactionScope
	variantRepo    catalog.VariantRepository
	stockRepo      inventory.StockRepository
	ruleRepo       inventory.ReorderRuleRepository
	driftReader    inventory.DriftReader
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	scope txscope.TransactionScope,
	variantRepo catalog.VariantRepository,
	stockRepo inventory.StockRepository,
	ruleRepo inventory.ReorderRuleRepository,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		scope:       scope,
		variantRepo: variantRepo,
		stockRepo:   stockRepo,
		ruleRepo:    ruleRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for threshold events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLedgerMetrics sets the collector for rebuild and alert counts
func (s *StockService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// SetDriftReader sets the reader used by DriftReport
func (s *StockService) SetDriftReader(reader inventory.DriftReader) {
	s.driftReader = reader
}

// Adjust adds delta to the cached stock of a variant.
func (s *StockService) Adjust(ctx context.Context, variantID uuid.UUID, delta int64) (*StockRowResponse, error) {
	if _, err := s.variantRepo.FindByID(ctx, variantID); err != nil {
		return nil, err
	}
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		return repos.StockRepo().Increment(ctx, variantID, delta)
	})
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	s.logger.Info("stock adjusted",
		zap.String("variant_id", variantID.String()),
		zap.Int64("delta", delta),
	)
	s.CheckThresholds(ctx, []uuid.UUID{variantID})
	return s.StockRow(ctx, variantID)
}

// Set overwrites the cached stock of a variant, e.g. after a physical count.
func (s *StockService) Set(ctx context.Context, variantID uuid.UUID, qty int64) (*StockRowResponse, error) {
	if _, err := s.variantRepo.FindByID(ctx, variantID); err != nil {
		return nil, err
	}
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		return repos.StockRepo().Set(ctx, variantID, qty)
	})
	if err != nil {
		return nil, fmt.Errorf("set stock: %w", err)
	}
	s.logger.Info("stock set",
		zap.String("variant_id", variantID.String()),
		zap.Int64("qty", qty),
	)
	s.CheckThresholds(ctx, []uuid.UUID{variantID})
	return s.StockRow(ctx, variantID)
}

// StockRows returns one row per variant with quantity, threshold and alert flag.
func (s *StockService) StockRows(ctx context.Context) ([]StockRowResponse, error) {
	rows, err := s.stockRows(ctx, nil)
	if err != nil {
		return nil, err
	}
	return ToStockRowResponses(rows), nil
}

// StockRow returns the stock row of one variant.
func (s *StockService) StockRow(ctx context.Context, variantID uuid.UUID) (*StockRowResponse, error) {
	rows, err := s.stockRows(ctx, []uuid.UUID{variantID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	resp := ToStockRowResponse(rows[0])
	return &resp, nil
}

// ReorderAlerts lists ruled variants below their minimum, worst shortfall first.
func (s *StockService) ReorderAlerts(ctx context.Context) ([]AlertResponse, error) {
	rows, err := s.stockRows(ctx, nil)
	if err != nil {
		return nil, err
	}
	return ToAlertResponses(inventory.BuildReorderAlerts(rows)), nil
}

func (s *StockService) stockRows(ctx context.Context, ids []uuid.UUID) ([]inventory.StockRow, error) {
	var (
		variants []catalog.VariantWithProduct
		err      error
	)
	if ids == nil {
		variants, err = s.variantRepo.FindAllWithProduct(ctx)
	} else {
		variants, err = s.variantRepo.FindWithProductByIDs(ctx, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	stock, err := s.stockRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}
	rules, err := s.ruleRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reorder rules: %w", err)
	}
	return inventory.BuildStockRows(variants, stock, rules), nil
}

// SetReorderRule creates or replaces the minimum quantity of a variant.
func (s *StockService) SetReorderRule(ctx context.Context, variantID uuid.UUID, minQty int64) (*StockRowResponse, error) {
	if _, err := s.variantRepo.FindByID(ctx, variantID); err != nil {
		return nil, err
	}
	rule, err := inventory.NewReorderRule(variantID, minQty)
	if err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, fmt.Errorf("save reorder rule: %w", err)
	}
	s.CheckThresholds(ctx, []uuid.UUID{variantID})
	return s.StockRow(ctx, variantID)
}

// DeleteReorderRule removes the rule of a variant; it then never alerts.
func (s *StockService) DeleteReorderRule(ctx context.Context, variantID uuid.UUID) error {
	return s.ruleRepo.Delete(ctx, variantID)
}

// RebuildFromLedger overwrites the cached stock of one variant with the
// ledger fold and returns the before/after values.
func (s *StockService) RebuildFromLedger(ctx context.Context, variantID uuid.UUID) (*RebuildResult, error) {
	if _, err := s.variantRepo.FindByID(ctx, variantID); err != nil {
		return nil, err
	}
	results, err := s.rebuild(ctx, variantID)
	if err != nil {
		return nil, err
	}
	result := RebuildResult{VariantID: variantID}
	if len(results) > 0 {
		result = results[0]
	}
	return &result, nil
}

// RebuildAll rebuilds every variant that has a cached row or ledger activity.
func (s *StockService) RebuildAll(ctx context.Context) ([]RebuildResult, error) {
	return s.rebuild(ctx, uuid.Nil)
}

func (s *StockService) rebuild(ctx context.Context, variantID uuid.UUID) ([]RebuildResult, error) {
	var results []RebuildResult
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		movements, err := repos.MovementRepo().FindByTypes(ctx, variantID, ledger.MovementTypeOut, ledger.MovementTypeFull)
		if err != nil {
			return err
		}
		target := inventory.LedgerStock(movements)

		cached, err := repos.StockRepo().FindAll(ctx)
		if err != nil {
			return err
		}
		if variantID != uuid.Nil {
			if _, ok := target[variantID]; !ok {
				target[variantID] = 0
			}
			cached = map[uuid.UUID]int64{variantID: cached[variantID]}
		} else {
			for id := range cached {
				if _, ok := target[id]; !ok {
					target[id] = 0
				}
			}
		}

		for id, qty := range target {
			prev := cached[id]
			if err := repos.StockRepo().Set(ctx, id, qty); err != nil {
				return err
			}
			results = append(results, RebuildResult{VariantID: id, Previous: prev, Rebuilt: qty})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rebuild stock from ledger: %w", err)
	}

	var touched []uuid.UUID
	for _, r := range results {
		touched = append(touched, r.VariantID)
		s.metrics.RecordRebuild(ctx, r.Previous, r.Rebuilt)
		if r.Previous != r.Rebuilt {
			s.logger.Warn("stock cache drift repaired",
				zap.String("variant_id", r.VariantID.String()),
				zap.Int64("previous", r.Previous),
				zap.Int64("rebuilt", r.Rebuilt),
			)
			s.publish(ctx, inventory.NewStockRebuiltEvent(r.VariantID, r.Previous, r.Rebuilt))
		}
	}
	s.CheckThresholds(ctx, touched)
	sortRebuildResults(results)
	return results, nil
}

// DriftReport compares cached stock with the ledger fold without writing.
func (s *StockService) DriftReport(ctx context.Context, onlyDrifted bool) ([]DriftResponse, error) {
	if s.driftReader == nil {
		return nil, shared.NewDomainError("NOT_CONFIGURED", "drift report is not available")
	}
	drifts, err := s.driftReader.StockDrift(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stock drift: %w", err)
	}
	out := make([]DriftResponse, 0, len(drifts))
	for _, d := range drifts {
		if onlyDrifted && d.Diff() == 0 {
			continue
		}
		out = append(out, ToDriftResponse(d))
	}
	return out, nil
}

// CheckThresholds publishes a StockBelowThresholdEvent for every given
// variant that is below its rule and counts the alerts. Errors are logged,
// not returned: the stock change that triggered the check is already
// committed.
func (s *StockService) CheckThresholds(ctx context.Context, variantIDs []uuid.UUID) {
	if (s.eventPublisher == nil && s.metrics == nil) || len(variantIDs) == 0 {
		return
	}
	rows, err := s.stockRows(ctx, variantIDs)
	if err != nil {
		s.logger.Error("threshold check failed", zap.Error(err))
		return
	}
	alerts := inventory.BuildReorderAlerts(rows)
	s.metrics.RecordReorderAlerts(ctx, len(alerts))
	for _, alert := range alerts {
		s.publish(ctx, inventory.NewStockBelowThresholdEvent(alert))
	}
}

func (s *StockService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish stock events", zap.Error(err))
	}
}
