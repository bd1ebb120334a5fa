package ledger

import "github.com/google/uuid"

// ClientSummary is the read projection shown for one client account.
type ClientSummary struct {
	ClientID  uuid.UUID        `json:"client_id"`
	Balances  []VariantBalance `json:"balances"`
	OpenTotal int64            `json:"open_total"`
	Deposit   DepositSplit     `json:"deposit"`
	Beer      BeerTotals       `json:"beer"`
	Equipment EquipmentCounts  `json:"equipment"`
	// EquipmentRaw is the unclamped net, kept for operators chasing
	// inconsistent history.
	EquipmentRaw EquipmentCounts  `json:"equipment_raw"`
	Anomalies    []VariantBalance `json:"anomalies,omitempty"`
	Deletion     DeletionCheck    `json:"deletion"`
}

// Summarize runs every aggregation over one client's ledger lines.
func Summarize(clientID uuid.UUID, lines []LedgerLine) ClientSummary {
	balances := Balances(lines)
	open := make(map[uuid.UUID]int64, len(balances))
	for _, b := range balances {
		open[b.VariantID] = b.Open
	}
	deposit := ComputeDepositSplit(lines)
	equipment := EquipmentInPlay(lines)
	openTotal := PositiveTotal(open)

	return ClientSummary{
		ClientID:     clientID,
		Balances:     balances,
		OpenTotal:    openTotal,
		Deposit:      deposit,
		Beer:         ComputeBeerTotals(lines),
		Equipment:    equipment,
		EquipmentRaw: EquipmentInPlayRaw(lines),
		Anomalies:    Anomalies(balances),
		Deletion:     evaluateDeletion(openTotal, deposit.Total(), equipment.Total()),
	}
}
