package ledger

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var (
	kegVariant = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	cupVariant = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	eqVariant  = uuid.MustParse("00000000-0000-0000-0000-00000000000e")
)

func kegLine(t MovementType, qty int64) LedgerLine {
	return LedgerLine{
		MovementID:   uuid.New(),
		VariantID:    kegVariant,
		ProductName:  "IPA",
		VariantLabel: "30L",
		Category:     catalog.CategoryStandardUnit,
		Type:         t,
		Qty:          qty,
		SizeL:        decimal.NewFromInt(30),
		VariantPrice: dec("100"),
		Deposit:      dec("30"),
	}
}

func cupLine(t MovementType, qty int64) LedgerLine {
	return LedgerLine{
		MovementID:  uuid.New(),
		VariantID:   cupVariant,
		ProductName: "Ecocup",
		Category:    catalog.CategoryReusableCup,
		Type:        t,
		Qty:         qty,
		SizeL:       decimal.Zero,
	}
}

func TestOpenQuantityByVariant(t *testing.T) {
	lines := []LedgerLine{
		kegLine(MovementTypeOut, 5),
		kegLine(MovementTypeIn, 1),
		kegLine(MovementTypeDefect, 1),
		kegLine(MovementTypeFull, 1),
		cupLine(MovementTypeOut, 10),
	}
	open := OpenQuantityByVariant(lines)
	assert.Equal(t, int64(2), open[kegVariant])
	assert.Equal(t, int64(10), open[cupVariant])
	assert.Equal(t, int64(12), PositiveTotal(open))
}

func TestOpenQuantityByVariant_OrderIndependent(t *testing.T) {
	lines := []LedgerLine{
		kegLine(MovementTypeOut, 7),
		kegLine(MovementTypeIn, 2),
		cupLine(MovementTypeOut, 4),
		kegLine(MovementTypeDefect, 1),
		cupLine(MovementTypeIn, 4),
		kegLine(MovementTypeFull, 3),
	}
	want := OpenQuantityByVariant(lines)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]LedgerLine(nil), lines...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, OpenQuantityByVariant(shuffled))
	}
}

func TestAnomalies_NegativeBalanceSurfaced(t *testing.T) {
	lines := []LedgerLine{kegLine(MovementTypeIn, 3)}
	open := OpenQuantityByVariant(lines)
	assert.Equal(t, int64(-3), open[kegVariant])
	assert.Equal(t, int64(0), PositiveTotal(open))

	anomalies := Anomalies(Balances(lines))
	require.Len(t, anomalies, 1)
	assert.Equal(t, "IPA 30L", anomalies[0].ProductName)
	assert.Equal(t, int64(-3), anomalies[0].Open)
}

func TestComputeDepositSplit(t *testing.T) {
	t.Run("deposit total equals signed per-line sum", func(t *testing.T) {
		lines := []LedgerLine{
			kegLine(MovementTypeOut, 5),
			kegLine(MovementTypeIn, 2),
			cupLine(MovementTypeOut, 10),
			cupLine(MovementTypeDefect, 1),
		}
		lines[1].Deposit = dec("25")

		var expected decimal.Decimal
		for _, l := range lines {
			d := LineDeposit(l.Deposit, l.Category)
			expected = expected.Add(d.Mul(decimal.NewFromInt(l.Type.Sign() * l.Qty)))
		}
		split := ComputeDepositSplit(lines)
		assert.True(t, expected.Equal(split.Total()), "got %s want %s", split.Total(), expected)
		assert.True(t, split.KegDeposit.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, int64(3), split.KegQtyNet)
		assert.True(t, split.CupDeposit.Equal(decimal.NewFromInt(9)))
		assert.Equal(t, int64(9), split.CupQtyNet)
	})

	t.Run("equipment-only lines carry no deposit", func(t *testing.T) {
		lines := []LedgerLine{{
			VariantID:   eqVariant,
			ProductName: "Matériel seul",
			Category:    catalog.CategoryEquipmentOnly,
			Type:        MovementTypeOut,
			Qty:         3,
			Deposit:     dec("50"),
		}}
		split := ComputeDepositSplit(lines)
		assert.True(t, split.Total().IsZero())
		assert.Equal(t, int64(0), split.KegQtyNet)
	})

	t.Run("maintenance cups land in the keg bucket with the unit default", func(t *testing.T) {
		lines := []LedgerLine{{
			VariantID:   uuid.New(),
			ProductName: "Ecocup lavage",
			Category:    catalog.CategoryMaintenanceCup,
			Type:        MovementTypeOut,
			Qty:         2,
		}}
		split := ComputeDepositSplit(lines)
		assert.True(t, split.KegDeposit.Equal(decimal.NewFromInt(60)))
		assert.True(t, split.CupDeposit.IsZero())
	})

	t.Run("stored override is used as recorded", func(t *testing.T) {
		l := cupLine(MovementTypeOut, 4)
		l.Deposit = dec("-2")
		split := ComputeDepositSplit([]LedgerLine{l})
		assert.True(t, split.CupDeposit.Equal(decimal.NewFromInt(-8)))

		l.Deposit = dec("0")
		split = ComputeDepositSplit([]LedgerLine{l})
		assert.True(t, split.CupDeposit.IsZero())
	})

	t.Run("over-return is not clamped", func(t *testing.T) {
		split := ComputeDepositSplit([]LedgerLine{kegLine(MovementTypeIn, 2)})
		assert.True(t, split.KegDeposit.Equal(decimal.NewFromInt(-60)))
		assert.Equal(t, int64(-2), split.KegQtyNet)
	})

	t.Run("category falls back to name classification", func(t *testing.T) {
		l := cupLine(MovementTypeOut, 3)
		l.Category = ""
		split := ComputeDepositSplit([]LedgerLine{l})
		assert.True(t, split.CupDeposit.Equal(decimal.NewFromInt(3)))
	})
}

func TestComputeBeerTotals(t *testing.T) {
	override := kegLine(MovementTypeOut, 2)
	override.UnitPrice = dec("90")
	noPrice := kegLine(MovementTypeOut, 1)
	noPrice.VariantPrice = nil

	lines := []LedgerLine{
		kegLine(MovementTypeOut, 5),
		kegLine(MovementTypeIn, 3),
		override,
		noPrice,
		{VariantID: uuid.New(), ProductName: "Gobelet perdu", Category: catalog.CategoryMaintenanceCup,
			Type: MovementTypeOut, Qty: 10, VariantPrice: dec("1")},
	}
	totals := ComputeBeerTotals(lines)
	assert.True(t, totals.Liters.Equal(decimal.NewFromInt(240)), totals.Liters.String())
	assert.True(t, totals.Billed.Equal(decimal.NewFromInt(680)), totals.Billed.String())
}

func TestEquipmentInPlay(t *testing.T) {
	out := kegLine(MovementTypeOut, 1)
	out.Notes = "tireuse=1;co2=2"
	back := kegLine(MovementTypeIn, 1)
	back.Equipment = []MovementEquipment{{Kind: EquipmentTap, Qty: 1}, {Kind: EquipmentCO2, Qty: 3}}

	raw := EquipmentInPlayRaw([]LedgerLine{out, back})
	assert.Equal(t, int64(0), raw[EquipmentTap])
	assert.Equal(t, int64(-1), raw[EquipmentCO2])

	clamped := EquipmentInPlay([]LedgerLine{out, back})
	assert.Equal(t, int64(0), clamped[EquipmentCO2])
	assert.Equal(t, int64(0), clamped.Total())
}

func TestLedgerLine_StructuredEquipmentWinsOverNotes(t *testing.T) {
	l := kegLine(MovementTypeOut, 1)
	l.Notes = "tonnelle=4"
	l.Equipment = []MovementEquipment{{Kind: EquipmentCounter, Qty: 1}}
	counts := l.EquipmentCounts()
	assert.Equal(t, int64(1), counts[EquipmentCounter])
	assert.Equal(t, int64(0), counts[EquipmentTent])
}

func TestCheckDeletion(t *testing.T) {
	t.Run("empty ledger is deletable", func(t *testing.T) {
		check := CheckDeletion(nil)
		assert.False(t, check.Blocked)
		assert.Empty(t, check.Reasons)
	})

	t.Run("open units block", func(t *testing.T) {
		l := kegLine(MovementTypeOut, 1)
		l.Deposit = dec("0")
		check := CheckDeletion([]LedgerLine{l})
		assert.True(t, check.Blocked)
		assert.Equal(t, int64(1), check.OpenTotal)
		assert.Len(t, check.Reasons, 1)
	})

	t.Run("deposit within epsilon does not block", func(t *testing.T) {
		out := kegLine(MovementTypeOut, 1)
		out.Deposit = dec("30.005")
		in := kegLine(MovementTypeIn, 1)
		check := CheckDeletion([]LedgerLine{out, in})
		assert.False(t, check.Blocked)
	})

	t.Run("deposit beyond epsilon blocks even when units are returned", func(t *testing.T) {
		out := kegLine(MovementTypeOut, 1)
		out.Deposit = dec("30.02")
		in := kegLine(MovementTypeIn, 1)
		check := CheckDeletion([]LedgerLine{out, in})
		assert.True(t, check.Blocked)
		assert.Equal(t, int64(0), check.OpenTotal)
		assert.Contains(t, check.Reasons[0], "outstanding deposit")
	})

	t.Run("equipment on loan blocks", func(t *testing.T) {
		l := LedgerLine{VariantID: eqVariant, ProductName: "Matériel seul", Category: catalog.CategoryEquipmentOnly,
			Type: MovementTypeOut, Notes: "tireuse=1"}
		check := CheckDeletion([]LedgerLine{l})
		assert.True(t, check.Blocked)
		assert.Equal(t, int64(1), check.EquipmentTotal)
	})
}

func TestScenario_KegDeliveryAndReturn(t *testing.T) {
	lines := []LedgerLine{kegLine(MovementTypeOut, 5)}

	s := Summarize(uuid.New(), lines)
	require.Len(t, s.Balances, 1)
	assert.Equal(t, int64(5), s.Balances[0].Open)
	assert.True(t, s.Deposit.KegDeposit.Equal(decimal.NewFromInt(150)))
	assert.True(t, s.Beer.Billed.Equal(decimal.NewFromInt(500)))
	assert.True(t, s.Beer.Liters.Equal(decimal.NewFromInt(150)))

	lines = append(lines, kegLine(MovementTypeIn, 3))
	s = Summarize(uuid.New(), lines)
	assert.Equal(t, int64(2), s.Balances[0].Open)
	assert.True(t, s.Deposit.KegDeposit.Equal(decimal.NewFromInt(60)))
	assert.True(t, s.Beer.Billed.Equal(decimal.NewFromInt(500)))

	balance := NewRunningBalance(lines)
	m := &Movement{VariantID: kegVariant, Type: MovementTypeIn, Qty: 10}
	err := balance.Apply(m, "IPA 30L")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrBusinessRule))
	assert.Contains(t, err.Error(), "IPA 30L")
	assert.Contains(t, err.Error(), "shortfall 8")
	assert.Equal(t, int64(2), balance.Open(kegVariant))
}

func TestScenario_EcocupRoundTrip(t *testing.T) {
	lines := []LedgerLine{cupLine(MovementTypeOut, 10), cupLine(MovementTypeIn, 10)}
	s := Summarize(uuid.New(), lines)
	assert.Equal(t, int64(0), s.Deposit.CupQtyNet)
	assert.True(t, s.Deposit.CupDeposit.IsZero())
	assert.False(t, s.Deletion.Blocked)
}

func TestRunningBalance_UsesEarlierLinesOfBatch(t *testing.T) {
	balance := NewRunningBalance(nil)
	require.NoError(t, balance.Apply(&Movement{VariantID: kegVariant, Type: MovementTypeOut, Qty: 4}, "IPA"))
	require.NoError(t, balance.Apply(&Movement{VariantID: kegVariant, Type: MovementTypeIn, Qty: 3}, "IPA"))
	require.NoError(t, balance.Apply(&Movement{VariantID: kegVariant, Type: MovementTypeDefect, Qty: 1}, "IPA"))
	err := balance.Apply(&Movement{VariantID: kegVariant, Type: MovementTypeDefect, Qty: 1}, "IPA")
	require.Error(t, err)
	assert.Equal(t, int64(0), balance.Open(kegVariant))

	require.NoError(t, balance.Apply(&Movement{VariantID: kegVariant, Type: MovementTypeFull, Qty: 2}, "IPA"))
	assert.Equal(t, int64(-2), balance.Open(kegVariant))
}

func TestNewMovement(t *testing.T) {
	clientID, batchID := uuid.New(), uuid.New()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("copies line fields", func(t *testing.T) {
		when := now.Add(-time.Hour)
		m, err := NewMovement(clientID, batchID, Line{
			VariantID: kegVariant, Type: MovementTypeOut, Qty: 5,
			UnitPrice: dec("100"), Deposit: dec("30"), Notes: "first delivery", OccurredAt: &when,
			Equipment: EquipmentCounts{EquipmentTap: 1},
		}, catalog.CategoryStandardUnit, now)
		require.NoError(t, err)
		assert.Equal(t, int64(5), m.Qty)
		assert.Equal(t, when, m.OccurredAt)
		assert.Equal(t, now, m.CreatedAt)
		assert.Equal(t, int64(-5), m.InventoryDelta())
		require.Len(t, m.Equipment, 1)
		assert.Equal(t, m.ID, m.Equipment[0].MovementID)
		assert.Equal(t, "first delivery", m.Notes)
	})

	t.Run("blank notes get the equipment in legacy form", func(t *testing.T) {
		m, err := NewMovement(clientID, batchID, Line{
			VariantID: kegVariant, Type: MovementTypeOut, Qty: 2,
			Equipment: EquipmentCounts{EquipmentCO2: 2, EquipmentTap: 1},
		}, catalog.CategoryStandardUnit, now)
		require.NoError(t, err)
		assert.Equal(t, "tireuse=1;co2=2", m.Notes)

		line := LedgerLine{Type: m.Type, Notes: m.Notes, Equipment: m.Equipment}
		assert.Equal(t, int64(3), line.EquipmentCounts().Total(), "structured rows and notes are not counted twice")
	})

	t.Run("equipment-only forces monetary fields to zero", func(t *testing.T) {
		m, err := NewMovement(clientID, batchID, Line{
			VariantID: eqVariant, Type: MovementTypeOut, Qty: 7, UnitPrice: dec("12"), Deposit: dec("40"),
			Equipment: EquipmentCounts{EquipmentTent: 1},
		}, catalog.CategoryEquipmentOnly, now)
		require.NoError(t, err)
		assert.Equal(t, int64(0), m.Qty)
		assert.True(t, m.UnitPriceTTC.IsZero())
		assert.True(t, m.DepositPerKeg.IsZero())
	})

	t.Run("negative overrides are refused", func(t *testing.T) {
		_, err := NewMovement(clientID, batchID, Line{
			VariantID: kegVariant, Type: MovementTypeOut, Qty: 1, Deposit: dec("-30"),
		}, catalog.CategoryStandardUnit, now)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = NewMovement(clientID, batchID, Line{
			VariantID: kegVariant, Type: MovementTypeOut, Qty: 1, UnitPrice: dec("-1"),
		}, catalog.CategoryStandardUnit, now)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects malformed lines", func(t *testing.T) {
		_, err := NewMovement(clientID, batchID, Line{VariantID: kegVariant, Type: MovementTypeOut, Qty: -1},
			catalog.CategoryStandardUnit, now)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = NewMovement(clientID, batchID, Line{VariantID: kegVariant, Type: "LOAN", Qty: 1},
			catalog.CategoryStandardUnit, now)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = NewMovement(clientID, batchID, Line{VariantID: kegVariant, Type: MovementTypeOut},
			catalog.CategoryStandardUnit, now)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = NewMovement(clientID, batchID, Line{VariantID: eqVariant, Type: MovementTypeOut, Qty: 3},
			catalog.CategoryEquipmentOnly, now)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestMovementType(t *testing.T) {
	typ, err := ParseMovementType(" defect ")
	require.NoError(t, err)
	assert.Equal(t, MovementTypeDefect, typ)

	_, err = ParseMovementType("LOAN")
	assert.Error(t, err)

	assert.Equal(t, int64(1), MovementTypeOut.Sign())
	assert.Equal(t, int64(-1), MovementTypeFull.Sign())
	assert.Equal(t, int64(0), MovementType("X").Sign())

	assert.Equal(t, int64(-4), MovementTypeOut.InventoryDelta(4))
	assert.Equal(t, int64(4), MovementTypeFull.InventoryDelta(4))
	assert.Equal(t, int64(0), MovementTypeIn.InventoryDelta(4))
	assert.Equal(t, int64(0), MovementTypeDefect.InventoryDelta(4))
}
