package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DepositEpsilon is the tolerance below which an outstanding deposit counts
// as settled.
var DepositEpsilon = decimal.RequireFromString("0.01")

// DeletionCheck is the verdict of the deletion guard for one client.
type DeletionCheck struct {
	Blocked        bool            `json:"blocked"`
	Reasons        []string        `json:"reasons,omitempty"`
	OpenTotal      int64           `json:"open_total"`
	DepositTotal   decimal.Decimal `json:"deposit_total"`
	EquipmentTotal int64           `json:"equipment_total"`
}

// CheckDeletion blocks when units are still open, when the absolute deposit
// exceeds DepositEpsilon, or when equipment is still out.
func CheckDeletion(lines []LedgerLine) DeletionCheck {
	openTotal := PositiveTotal(OpenQuantityByVariant(lines))
	deposit := ComputeDepositSplit(lines).Total()
	equipmentTotal := EquipmentInPlay(lines).Total()
	return evaluateDeletion(openTotal, deposit, equipmentTotal)
}

func evaluateDeletion(openTotal int64, deposit decimal.Decimal, equipmentTotal int64) DeletionCheck {
	check := DeletionCheck{
		OpenTotal:      openTotal,
		DepositTotal:   deposit,
		EquipmentTotal: equipmentTotal,
	}
	if openTotal > 0 {
		check.Reasons = append(check.Reasons, fmt.Sprintf("%d unit(s) still in play", openTotal))
	}
	if deposit.Abs().GreaterThan(DepositEpsilon) {
		check.Reasons = append(check.Reasons, fmt.Sprintf("outstanding deposit %s", deposit.StringFixed(2)))
	}
	if equipmentTotal > 0 {
		check.Reasons = append(check.Reasons, fmt.Sprintf("%d equipment item(s) still on loan", equipmentTotal))
	}
	check.Blocked = len(check.Reasons) > 0
	return check
}
