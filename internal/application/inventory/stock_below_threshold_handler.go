package inventory

import (
	"context"
	"fmt"

	"github.com/kegledger/backend/internal/domain/inventory"
	"github.com/kegledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlertNotifier delivers a reorder alert to whoever restocks.
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert AlertResponse) error
}

// StockBelowThresholdHandler handles StockBelowThreshold events
type StockBelowThresholdHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewStockBelowThresholdHandler creates a new handler for stock below threshold events
func NewStockBelowThresholdHandler(logger *zap.Logger) *StockBelowThresholdHandler {
	return &StockBelowThresholdHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockBelowThresholdHandler) WithNotifier(notifier StockAlertNotifier) *StockBelowThresholdHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowThresholdHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThresholdEvent
func (h *StockBelowThresholdHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowThreshold, event.EventType())
	}

	h.logger.Warn("stock below reorder threshold",
		zap.String("variant_id", e.VariantID.String()),
		zap.String("product", e.ProductName),
		zap.Int64("qty", e.Qty),
		zap.Int64("min_qty", e.MinQty),
		zap.Int64("shortfall", e.Shortfall()),
	)

	if h.notifier == nil {
		return nil
	}
	alert := AlertResponse{
		VariantID:   e.VariantID,
		ProductName: e.ProductName,
		Qty:         e.Qty,
		MinQty:      e.MinQty,
		Shortfall:   e.Shortfall(),
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// notification failure must not fail event handling
		h.logger.Error("failed to send stock alert", zap.Error(err))
	}
	return nil
}

var _ shared.EventHandler = (*StockBelowThresholdHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert AlertResponse) error {
	n.logger.Warn("REORDER ALERT",
		zap.String("product", alert.ProductName),
		zap.Int64("qty", alert.Qty),
		zap.Int64("min_qty", alert.MinQty),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
