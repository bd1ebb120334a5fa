package ledger

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// EquipmentKind is a piece of loaned equipment.
type EquipmentKind string

const (
	EquipmentTap     EquipmentKind = "tireuse"
	EquipmentCO2     EquipmentKind = "co2"
	EquipmentCounter EquipmentKind = "comptoir"
	EquipmentTent    EquipmentKind = "tonnelle"
)

// AllEquipmentKinds is the canonical order used for output.
var AllEquipmentKinds = []EquipmentKind{EquipmentTap, EquipmentCO2, EquipmentCounter, EquipmentTent}

// ParseEquipmentKind accepts a kind name case-insensitively.
func ParseEquipmentKind(s string) (EquipmentKind, bool) {
	k := EquipmentKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.IsValid()
}

// IsValid reports whether k is a known equipment kind
func (k EquipmentKind) IsValid() bool {
	switch k {
	case EquipmentTap, EquipmentCO2, EquipmentCounter, EquipmentTent:
		return true
	}
	return false
}

// MovementEquipment is the structured equipment count attached to a movement.
type MovementEquipment struct {
	MovementID uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Kind       EquipmentKind `gorm:"type:varchar(20);primaryKey"`
	Qty        int64         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MovementEquipment) TableName() string {
	return "movement_equipment"
}

// EquipmentCounts maps each equipment kind to a count. Values produced by
// this package always carry every known kind.
type EquipmentCounts map[EquipmentKind]int64

// NewEquipmentCounts returns counts with every kind at zero.
func NewEquipmentCounts() EquipmentCounts {
	c := make(EquipmentCounts, len(AllEquipmentKinds))
	for _, k := range AllEquipmentKinds {
		c[k] = 0
	}
	return c
}

// Total sums every kind.
func (c EquipmentCounts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}

// Positive returns a copy with negative and unknown entries dropped to zero.
func (c EquipmentCounts) Positive() EquipmentCounts {
	out := NewEquipmentCounts()
	for _, k := range AllEquipmentKinds {
		if n := c[k]; n > 0 {
			out[k] = n
		}
	}
	return out
}

// ParseEquipmentNotes reads legacy "key=value;key=value" annotations. Keys
// are case-insensitive, values are integers. Malformed pairs, unknown keys
// and negative values are ignored; a repeated key keeps its last value.
func ParseEquipmentNotes(notes string) EquipmentCounts {
	counts := NewEquipmentCounts()
	for _, pair := range strings.Split(notes, ";") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		kind, known := ParseEquipmentKind(key)
		if !known {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || n < 0 {
			continue
		}
		counts[kind] = n
	}
	return counts
}

// FormatEquipmentNotes renders non-zero counts in the legacy notes format.
func FormatEquipmentNotes(c EquipmentCounts) string {
	parts := make([]string, 0, len(AllEquipmentKinds))
	for _, k := range AllEquipmentKinds {
		if n := c[k]; n != 0 {
			parts = append(parts, string(k)+"="+strconv.FormatInt(n, 10))
		}
	}
	return strings.Join(parts, ";")
}

// EquipmentInPlayRaw nets equipment per kind across lines using the
// movement sign. The result may be negative.
func EquipmentInPlayRaw(lines []LedgerLine) EquipmentCounts {
	net := NewEquipmentCounts()
	for i := range lines {
		sign := lines[i].Type.Sign()
		if sign == 0 {
			continue
		}
		for k, n := range lines[i].EquipmentCounts() {
			net[k] += sign * n
		}
	}
	return net
}

// EquipmentInPlay is EquipmentInPlayRaw clamped to zero per kind.
func EquipmentInPlay(lines []LedgerLine) EquipmentCounts {
	net := EquipmentInPlayRaw(lines)
	for k, n := range net {
		if n < 0 {
			net[k] = 0
		}
	}
	return net
}
