package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/catalog"
	"github.com/kegledger/backend/internal/domain/ledger"
	"github.com/kegledger/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedClient(t *testing.T, db *gorm.DB, name string) *partner.Client {
	t.Helper()
	c, err := partner.NewClient(name, partner.ContactInfo{})
	require.NoError(t, err)
	require.NoError(t, NewGormClientRepository(db).Save(context.Background(), c))
	return c
}

func seedVariant(t *testing.T, db *gorm.DB, productName, label string, sizeL, price int64) (*catalog.Product, *catalog.Variant) {
	t.Helper()
	ctx := context.Background()
	p, err := catalog.NewProduct(productName)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(ctx, p))

	size := decimal.NewFromInt(sizeL)
	var pricePtr *decimal.Decimal
	if price > 0 {
		d := decimal.NewFromInt(price)
		pricePtr = &d
	}
	v, err := catalog.NewVariant(p.ID, label, &size, pricePtr)
	require.NoError(t, err)
	require.NoError(t, NewGormVariantRepository(db).Save(ctx, v))
	return p, v
}

func newTestMovement(t *testing.T, clientID, variantID uuid.UUID, typ ledger.MovementType, qty int64, at time.Time) *ledger.Movement {
	t.Helper()
	m, err := ledger.NewMovement(clientID, uuid.New(), ledger.Line{
		VariantID:  variantID,
		Type:       typ,
		Qty:        qty,
		OccurredAt: &at,
	}, catalog.CategoryStandardUnit, at)
	require.NoError(t, err)
	return m
}
