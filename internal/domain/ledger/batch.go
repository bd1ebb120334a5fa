package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/shared"
)

// RunningBalance tracks open quantities while the lines of one batch are
// validated, so a later return can use units delivered earlier in the batch.
type RunningBalance struct {
	open map[uuid.UUID]int64
}

// NewRunningBalance starts from the client's current ledger.
func NewRunningBalance(lines []LedgerLine) *RunningBalance {
	return &RunningBalance{open: OpenQuantityByVariant(lines)}
}

// Open returns the current signed balance of a variant.
func (b *RunningBalance) Open(variantID uuid.UUID) int64 {
	return b.open[variantID]
}

// Apply validates and folds one movement. Returns (IN, DEFECT) larger than
// the open balance are refused and leave the balance untouched.
func (b *RunningBalance) Apply(m *Movement, displayName string) error {
	current := b.open[m.VariantID]
	if m.Type.IsReturn() && m.Qty > current {
		available := current
		if available < 0 {
			available = 0
		}
		return shared.NewBusinessRuleViolation(
			fmt.Sprintf("%s of %d x %s exceeds open balance %d (shortfall %d)",
				m.Type, m.Qty, displayName, available, m.Qty-available),
			fmt.Sprintf("%s: open %d, requested %d", displayName, available, m.Qty),
		)
	}
	b.open[m.VariantID] = current + m.Type.Sign()*m.Qty
	return nil
}
