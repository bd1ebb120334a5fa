package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockStockAlertNotifier is a mock implementation of StockAlertNotifier
type MockStockAlertNotifier struct {
	mock.Mock
}

func (m *MockStockAlertNotifier) SendAlert(ctx context.Context, alert AlertResponse) error {
	return m.Called(ctx, alert).Error(0)
}

func newBelowThresholdEvent() *inventory.StockBelowThresholdEvent {
	return inventory.NewStockBelowThresholdEvent(inventory.Alert{
		VariantID:   uuid.New(),
		ProductName: "Blonde",
		Qty:         1,
		MinQty:      4,
		Shortfall:   3,
	})
}

func TestStockBelowThresholdHandler_EventTypes(t *testing.T) {
	h := NewStockBelowThresholdHandler(zap.NewNop())

	assert.Equal(t, []string{inventory.EventTypeStockBelowThreshold}, h.EventTypes())
}

func TestStockBelowThresholdHandler_Handle(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	notifier := new(MockStockAlertNotifier)
	h := NewStockBelowThresholdHandler(zap.New(core)).WithNotifier(notifier)
	e := newBelowThresholdEvent()

	notifier.On("SendAlert", mock.Anything, mock.MatchedBy(func(a AlertResponse) bool {
		return a.VariantID == e.VariantID && a.Shortfall == 3
	})).Return(nil).Once()

	require.NoError(t, h.Handle(context.Background(), e))

	notifier.AssertExpectations(t)
	assert.Equal(t, 1, logs.FilterMessage("stock below reorder threshold").Len())
}

func TestStockBelowThresholdHandler_NotifierFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	notifier := new(MockStockAlertNotifier)
	notifier.On("SendAlert", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	h := NewStockBelowThresholdHandler(zap.New(core)).WithNotifier(notifier)

	err := h.Handle(context.Background(), newBelowThresholdEvent())

	assert.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("failed to send stock alert").Len())
}

func TestStockBelowThresholdHandler_WrongEvent(t *testing.T) {
	h := NewStockBelowThresholdHandler(zap.NewNop())
	other := inventory.NewStockRebuiltEvent(uuid.New(), 1, 2)

	err := h.Handle(context.Background(), other)

	assert.Error(t, err)
}
