package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/application/txscope"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/ledger"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/kegledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StockWatcher is told which variants had their cached stock changed so it
// can raise reorder alerts.
type StockWatcher interface {
	CheckThresholds(ctx context.Context, variantIDs []uuid.UUID)
}

// MovementService appends batches to client ledgers and deletes movements,
// keeping the stock cache in step inside the same transaction.
type MovementService struct {
	scope          txscope.TransactionScope
	movementRepo   ledger.MovementRepository
	idempotency    shared.IdempotencyStore
	idemConfig     shared.IdempotencyConfig
	stockWatcher   StockWatcher
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewMovementService creates a new MovementService
func NewMovementService(scope txscope.TransactionScope, movementRepo ledger.MovementRepository, logger *zap.Logger) *MovementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovementService{
		scope:        scope,
		movementRepo: movementRepo,
		idemConfig:   shared.DefaultIdempotencyConfig(),
		logger:       logger,
		now:          time.Now,
	}
}

// SetIdempotencyStore enables duplicate-batch detection
func (s *MovementService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idemConfig = cfg
}

// SetStockWatcher sets the watcher notified after stock changes
func (s *MovementService) SetStockWatcher(w StockWatcher) {
	s.stockWatcher = w
}

// SetEventPublisher sets the event publisher for ledger events
func (s *MovementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLedgerMetrics sets the collector for batch and deletion counts
func (s *MovementService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// RecordBatch validates and appends every line of a batch, or none of them.
// Returns (IN, DEFECT) are checked against the client's open balance plus
// the earlier lines of the same batch.
func (s *MovementService) RecordBatch(ctx context.Context, req RecordBatchRequest) (*BatchResult, error) {
	result, movements, err := s.recordBatch(ctx, req)
	switch {
	case errors.Is(err, shared.ErrDuplicateBatch):
		s.metrics.RecordBatch(ctx, telemetry.BatchDuplicate, nil)
	case err != nil:
		s.metrics.RecordBatch(ctx, telemetry.BatchRejected, nil)
	default:
		s.metrics.RecordBatch(ctx, telemetry.BatchRecorded, movements)
	}
	return result, err
}

func (s *MovementService) recordBatch(ctx context.Context, req RecordBatchRequest) (*BatchResult, []*ledger.Movement, error) {
	if req.ClientID == uuid.Nil {
		return nil, nil, shared.NewValidationError("client_id is required")
	}
	if len(req.Lines) == 0 {
		return nil, nil, shared.NewValidationError("batch has no lines")
	}

	lines, err := s.parseLines(req)
	if err != nil {
		return nil, nil, err
	}

	// The key is claimed before the transaction so concurrent submissions of
	// the same batch see exactly one winner.
	idemKey := s.idempotencyKey(req)
	if idemKey != "" {
		claimed, err := s.idempotency.MarkProcessed(ctx, idemKey, s.idemConfig.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("claim idempotency key: %w", err)
		}
		if !claimed {
			return nil, nil, shared.ErrDuplicateBatch
		}
	}

	batchID := uuid.New()
	now := s.now()
	var movements []*ledger.Movement

	err = s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		if _, err := repos.ClientRepo().FindByIDForUpdate(ctx, req.ClientID); err != nil {
			return err
		}

		variants, err := s.loadVariants(ctx, repos, lines)
		if err != nil {
			return err
		}

		history, err := repos.MovementRepo().LinesByClient(ctx, req.ClientID)
		if err != nil {
			return err
		}
		balance := ledger.NewRunningBalance(history)

		movements = make([]*ledger.Movement, 0, len(lines))
		for i, line := range lines {
			v := variants[line.VariantID]
			m, err := ledger.NewMovement(req.ClientID, batchID, line, v.Category, now)
			if err != nil {
				return lineError(i, err)
			}
			if err := balance.Apply(m, catalog.DisplayName(v.ProductName, &v.Variant)); err != nil {
				return lineError(i, err)
			}
			movements = append(movements, m)
		}

		if err := repos.MovementRepo().CreateBatch(ctx, movements); err != nil {
			return err
		}
		for variantID, delta := range stockDeltas(movements, 1) {
			if err := repos.StockRepo().Increment(ctx, variantID, delta); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.releaseKey(ctx, idemKey)
		return nil, nil, err
	}

	s.logger.Info("movement batch recorded",
		zap.String("client_id", req.ClientID.String()),
		zap.String("batch_id", batchID.String()),
		zap.Int("lines", len(movements)),
	)
	s.publish(ctx, ledger.NewBatchRecordedEvent(req.ClientID, batchID, movements))
	s.watchStock(ctx, movements)

	result := &BatchResult{BatchID: batchID, ClientID: req.ClientID}
	for _, m := range movements {
		result.Movements = append(result.Movements, ToMovementResponse(m))
	}
	return result, movements, nil
}

// RecordMovement records a single line as a one-line batch.
func (s *MovementService) RecordMovement(ctx context.Context, req RecordMovementRequest) (*MovementResponse, error) {
	result, err := s.RecordBatch(ctx, RecordBatchRequest{
		ClientID: req.ClientID,
		Lines:    []LineInput{req.LineInput},
	})
	if err != nil {
		return nil, err
	}
	return &result.Movements[0], nil
}

// DeleteMovement removes a movement and reverses its stock effect.
func (s *MovementService) DeleteMovement(ctx context.Context, movementID uuid.UUID) error {
	var deleted *ledger.Movement
	var remaining []ledger.LedgerLine

	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		m, err := repos.MovementRepo().FindByID(ctx, movementID)
		if err != nil {
			return err
		}
		if _, err := repos.ClientRepo().FindByIDForUpdate(ctx, m.ClientID); err != nil {
			return err
		}
		if err := repos.MovementRepo().Delete(ctx, m.ID); err != nil {
			return err
		}
		if delta := m.InventoryDelta(); delta != 0 {
			if err := repos.StockRepo().Increment(ctx, m.VariantID, -delta); err != nil {
				return err
			}
		}
		remaining, err = repos.MovementRepo().LinesByClient(ctx, m.ClientID)
		if err != nil {
			return err
		}
		deleted = m
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("movement deleted",
		zap.String("movement_id", deleted.ID.String()),
		zap.String("client_id", deleted.ClientID.String()),
		zap.String("type", string(deleted.Type)),
		zap.Int64("qty", deleted.Qty),
	)
	s.publish(ctx, ledger.NewMovementDeletedEvent(deleted))
	s.metrics.RecordDeletion(ctx, deleted.Type)

	if anomalies := ledger.Anomalies(ledger.Balances(remaining)); len(anomalies) > 0 {
		logAnomalies(s.logger, deleted.ClientID, anomalies)
		s.publish(ctx, ledger.NewAnomalyDetectedEvent(deleted.ClientID, anomalies))
	}
	s.watchStock(ctx, []*ledger.Movement{deleted})
	return nil
}

// ListClientMovements returns a client's movements, oldest first
func (s *MovementService) ListClientMovements(ctx context.Context, clientID uuid.UUID) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out, nil
}

func (s *MovementService) idempotencyKey(req RecordBatchRequest) string {
	if s.idempotency == nil || !s.idemConfig.Enabled || req.IdempotencyKey == "" {
		return ""
	}
	return "batch:" + req.ClientID.String() + ":" + req.IdempotencyKey
}

// releaseKey frees a claimed key after a failed batch so the client can
// resubmit it
func (s *MovementService) releaseKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idempotency.Release(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("failed to release batch key",
			zap.String("idempotency_key", key),
			zap.Error(err),
		)
	}
}

func (s *MovementService) parseLines(req RecordBatchRequest) ([]ledger.Line, error) {
	lines := make([]ledger.Line, 0, len(req.Lines))
	for i, in := range req.Lines {
		typ, err := ledger.ParseMovementType(in.Type)
		if err != nil {
			return nil, lineError(i, err)
		}
		qty, ok := parseQuantity(in.Qty)
		if !ok {
			return nil, lineError(i, shared.NewValidationError("malformed quantity %q", in.Qty))
		}
		price, err := parseOptionalAmount("unit_price", in.UnitPrice)
		if err != nil {
			return nil, lineError(i, err)
		}
		deposit, err := parseOptionalAmount("deposit", in.Deposit)
		if err != nil {
			return nil, lineError(i, err)
		}
		equipment, err := parseEquipment(in)
		if err != nil {
			return nil, lineError(i, err)
		}
		occurredAt := in.OccurredAt
		if occurredAt == nil {
			occurredAt = req.OccurredAt
		}
		lines = append(lines, ledger.Line{
			VariantID:  in.VariantID,
			Type:       typ,
			Qty:        qty,
			UnitPrice:  price,
			Deposit:    deposit,
			Notes:      in.Notes,
			Equipment:  equipment,
			OccurredAt: occurredAt,
		})
	}
	return lines, nil
}

// parseEquipment reads structured equipment, or imports legacy notes
// annotations when none is given.
func parseEquipment(in LineInput) (ledger.EquipmentCounts, error) {
	if len(in.Equipment) == 0 {
		return ledger.ParseEquipmentNotes(in.Notes), nil
	}
	counts := ledger.NewEquipmentCounts()
	for key, n := range in.Equipment {
		kind, ok := ledger.ParseEquipmentKind(key)
		if !ok {
			return nil, shared.NewValidationError("unknown equipment kind %q", key)
		}
		if n < 0 {
			return nil, shared.NewValidationError("equipment %s cannot be negative", kind)
		}
		counts[kind] += n
	}
	return counts, nil
}

func (s *MovementService) loadVariants(ctx context.Context, repos txscope.TransactionalRepositories, lines []ledger.Line) (map[uuid.UUID]catalog.VariantWithProduct, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool)
	for _, l := range lines {
		if !seen[l.VariantID] {
			seen[l.VariantID] = true
			ids = append(ids, l.VariantID)
		}
	}
	found, err := repos.VariantRepo().FindWithProductByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.VariantWithProduct, len(found))
	for _, v := range found {
		byID[v.Variant.ID] = v
	}
	for i, l := range lines {
		if _, ok := byID[l.VariantID]; !ok {
			return nil, lineError(i, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("variant %s not found", l.VariantID)))
		}
	}
	return byID, nil
}

func (s *MovementService) watchStock(ctx context.Context, movements []*ledger.Movement) {
	if s.stockWatcher == nil {
		return
	}
	deltas := stockDeltas(movements, 1)
	if len(deltas) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	s.stockWatcher.CheckThresholds(ctx, ids)
}

func (s *MovementService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish ledger events", zap.Error(err))
	}
}

// stockDeltas sums the non-zero stock effect per variant, multiplied by
// direction (1 to apply, -1 to reverse).
func stockDeltas(movements []*ledger.Movement, direction int64) map[uuid.UUID]int64 {
	deltas := make(map[uuid.UUID]int64)
	for _, m := range movements {
		if d := m.InventoryDelta(); d != 0 {
			deltas[m.VariantID] += direction * d
		}
	}
	for id, d := range deltas {
		if d == 0 {
			delete(deltas, id)
		}
	}
	return deltas
}

// lineError prefixes a domain error with the 1-based line number.
func lineError(index int, err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return &shared.DomainError{
			Code:    de.Code,
			Message: fmt.Sprintf("line %d: %s", index+1, de.Message),
			Details: de.Details,
		}
	}
	return fmt.Errorf("line %d: %w", index+1, err)
}

func logAnomalies(logger *zap.Logger, clientID uuid.UUID, anomalies []ledger.VariantBalance) {
	for _, a := range anomalies {
		logger.Warn("negative open balance",
			zap.String("code", shared.CodeDataIntegrity),
			zap.String("client_id", clientID.String()),
			zap.String("variant_id", a.VariantID.String()),
			zap.String("product", a.ProductName),
			zap.Int64("open", a.Open),
		)
	}
}
