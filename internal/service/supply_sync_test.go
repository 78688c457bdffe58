package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lincomp/stizun/internal/model"
	"github.com/lincomp/stizun/internal/repository"
)

func TestReconcileNoChangesIsIdempotent(t *testing.T) {
	env := newTestEnv()
	env.addSuppliedProduct("stable", "100", 5)

	summary, err := env.syncS.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Switched)
	assert.Equal(t, 0, summary.Disabled)
	assert.Equal(t, 0, summary.Failed)

	// Second pass over the already-consistent state must also be a no-op.
	summary, err = env.syncS.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Switched)
}

func TestReconcileSyncsChangedFields(t *testing.T) {
	env := newTestEnv()
	productID, itemID := env.addSuppliedProduct("drifting", "100", 5)

	// The feed moved price and stock since the last pass.
	item := env.supply.items[itemID]
	item.PurchasePrice = dec("90")
	item.Stock = 12

	summary, err := env.syncS.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	p, err := env.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, dec("90").Equal(p.PurchasePrice))
	assert.Equal(t, 12, p.Stock)
	// Cached prices reflect the new purchase price: 90 + 10% margin.
	assert.True(t, dec("99").Equal(p.CachedPrice), "cached price %s", p.CachedPrice)

	// A second pass sees consistent state again.
	summary, err = env.syncS.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
}

func TestReconcileDisablesWhenSupplyItemGone(t *testing.T) {
	env := newTestEnv()
	productID, itemID := env.addSuppliedProduct("orphaned", "100", 5)

	delete(env.supply.items, itemID)

	summary, err := env.syncS.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Disabled)

	p, err := env.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.False(t, p.Available)
	assert.False(t, p.Visible)
}

func TestReconcileDisablesGuaranteedLossAtAbsolutePrice(t *testing.T) {
	env := newTestEnv()
	productID, itemID := env.addSuppliedProduct("loss", "100", 5)

	p := env.products.products[productID]
	p.SalesPrice = dec("95") // fixed below the feed's purchase price
	env.supply.items[itemID].PurchasePrice = dec("120")

	summary, err := env.syncS.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Disabled)

	got, err := env.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.False(t, got.Available)
}

func TestReconcileSwitchesToCheaperSupplyItem(t *testing.T) {
	env := newTestEnv()
	productID, _ := env.addSuppliedProduct("switchable", "100", 5)

	// Interchangeable item at a better price: 80 + 10% = 88 < the product's
	// current gross of 110.
	cheaperID := env.supply.add(model.SupplyItem{
		SupplierID:              uuid.New(),
		Name:                    "switchable",
		Manufacturer:            "Acme",
		ManufacturerProductCode: "MPC-switchable",
		SupplierProductCode:     "SPC-cheaper",
		PurchasePrice:           dec("80"),
		Stock:                   20,
	})

	summary, err := env.syncS.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Switched)

	p, err := env.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p.SupplyItemID)
	assert.Equal(t, cheaperID, *p.SupplyItemID)
	assert.True(t, dec("80").Equal(p.PurchasePrice))
	assert.Equal(t, "SPC-cheaper", p.SupplierProductCode)
}

func TestReconcileIgnoresCandidateThatIsNotActuallyCheaper(t *testing.T) {
	env := newTestEnv()
	productID, itemID := env.addSuppliedProduct("steady", "100", 5)

	// 105 + 10% = 115.5 ≥ gross 110: not an improvement.
	env.supply.add(model.SupplyItem{
		SupplierID:              uuid.New(),
		Name:                    "steady",
		Manufacturer:            "Acme",
		ManufacturerProductCode: "MPC-steady",
		SupplierProductCode:     "SPC-pricier",
		PurchasePrice:           dec("105"),
		Stock:                   20,
	})

	summary, err := env.syncS.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Switched)

	p, err := env.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, itemID, *p.SupplyItemID)
}

func TestReconcileSwitchesAwayFromExhaustedSupplyItem(t *testing.T) {
	env := newTestEnv()
	productID, itemID := env.addSuppliedProduct("exhausted", "100", 5)

	// Current source ran dry; the product was disabled by an earlier cascade.
	env.supply.items[itemID].Stock = 0
	env.products.products[productID].Available = false

	// Replacement costs more (so the cheaper-switch branch ignores it) but is
	// in stock — any sellable replacement beats an empty shelf.
	altID := env.supply.add(model.SupplyItem{
		SupplierID:              uuid.New(),
		Name:                    "exhausted",
		Manufacturer:            "Acme",
		ManufacturerProductCode: "MPC-exhausted",
		SupplierProductCode:     "SPC-alt",
		PurchasePrice:           dec("120"),
		Stock:                   8,
	})

	summary, err := env.syncS.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Switched)

	p, err := env.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, altID, *p.SupplyItemID)
	assert.True(t, p.Available, "the switch must re-enable the product")
	assert.Equal(t, 8, p.Stock)
}

func TestReconcileRespectsProtectedDescription(t *testing.T) {
	env := newTestEnv()
	productID, itemID := env.addSuppliedProduct("curated", "100", 5)

	p := env.products.products[productID]
	p.Description = "hand-written copy"
	p.DescriptionProtected = true
	env.supply.items[itemID].Description = "feed boilerplate"

	_, err := env.syncS.Reconcile(context.Background())
	require.NoError(t, err)

	got, err := env.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, "hand-written copy", got.Description)
}

func TestReconcileCopiesUnprotectedDescription(t *testing.T) {
	env := newTestEnv()
	productID, itemID := env.addSuppliedProduct("plain", "100", 5)

	env.supply.items[itemID].Description = "feed text"

	_, err := env.syncS.Reconcile(context.Background())
	require.NoError(t, err)

	got, err := env.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, "feed text", got.Description)
}

func TestReconcileSkipsDescriptionWhenURLSourced(t *testing.T) {
	env := newTestEnv()
	productID, itemID := env.addSuppliedProduct("remote", "100", 5)

	item := env.supply.items[itemID]
	item.Description = "feed text"
	item.DescriptionURL = "https://supplier.example/desc/1"

	_, err := env.syncS.Reconcile(context.Background())
	require.NoError(t, err)

	got, err := env.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Empty(t, got.Description)
}

func TestReconcileIsolatesPerItemFailures(t *testing.T) {
	env := newTestEnv()
	brokenID, brokenItemID := env.addSuppliedProduct("broken", "100", 5)
	healthyID, healthyItemID := env.addSuppliedProduct("healthy", "100", 5)

	env.supply.items[brokenItemID].PurchasePrice = dec("50")
	env.supply.items[healthyItemID].PurchasePrice = dec("60")
	env.products.failSave[brokenID] = &repository.ValidationError{
		Fields: map[string]string{"name": "required"},
	}

	summary, err := env.syncS.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Updated)

	healthy, err := env.products.FindByID(context.Background(), healthyID)
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(healthy.PurchasePrice), "the healthy product must still sync")
}
