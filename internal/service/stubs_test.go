package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lincomp/stizun/internal/model"
	"github.com/lincomp/stizun/internal/pricing"
	"github.com/lincomp/stizun/internal/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Product repository stub ──────────────────────────────────────────────────

type stubProductRepo struct {
	products   map[uuid.UUID]*model.Product
	components map[uuid.UUID][]model.ProductComponent

	// items backs SupplyItem preloads; shared with the supply item stub so
	// both sides observe the same records.
	items map[uuid.UUID]*model.SupplyItem

	// withoutSpecific is returned verbatim by FindWithoutSpecificRanges.
	withoutSpecific []uuid.UUID

	// failSave forces Save to fail for specific products.
	failSave map[uuid.UUID]error

	saveCount int
}

func newStubProductRepo(items map[uuid.UUID]*model.SupplyItem) *stubProductRepo {
	return &stubProductRepo{
		products:   make(map[uuid.UUID]*model.Product),
		components: make(map[uuid.UUID][]model.ProductComponent),
		items:      items,
		failSave:   make(map[uuid.UUID]error),
	}
}

func (r *stubProductRepo) add(p model.Product) uuid.UUID {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = &p
	return p.ID
}

func (r *stubProductRepo) preload(p model.Product) model.Product {
	if p.SupplyItemID != nil {
		p.SupplyItem = r.items[*p.SupplyItemID]
	}
	comps := make([]model.ProductComponent, 0, len(r.components[p.ID]))
	for _, pc := range r.components[p.ID] {
		pc.SupplyItem = r.items[pc.SupplyItemID]
		comps = append(comps, pc)
	}
	if len(comps) > 0 {
		p.Components = comps
	}
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stored := *p
	r.products[p.ID] = &stored
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	loaded := r.preload(*p)
	return &loaded, nil
}

func (r *stubProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Save(_ context.Context, p *model.Product) error {
	if err, ok := r.failSave[p.ID]; ok {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stored := *p
	stored.SupplyItem = nil
	stored.Components = nil
	r.products[p.ID] = &stored
	r.saveCount++
	return nil
}

func (r *stubProductRepo) FindSupplied(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.SupplyItemID != nil {
			out = append(out, r.preload(*p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) FindBySupplierID(_ context.Context, supplierID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.SupplierID != nil && *p.SupplierID == supplierID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindBySupplyItemID(_ context.Context, supplyItemID uuid.UUID) (*model.Product, error) {
	for _, p := range r.products {
		if p.SupplyItemID != nil && *p.SupplyItemID == supplyItemID {
			loaded := r.preload(*p)
			return &loaded, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubProductRepo) FindWithoutSpecificRanges(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, id := range r.withoutSpecific {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindComponentUsers(_ context.Context, supplyItemID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for productID, comps := range r.components {
		for _, pc := range comps {
			if pc.SupplyItemID == supplyItemID {
				if p, ok := r.products[productID]; ok {
					out = append(out, *p)
				}
				break
			}
		}
	}
	return out, nil
}

func (r *stubProductRepo) Components(_ context.Context, productID uuid.UUID) ([]model.ProductComponent, error) {
	comps := make([]model.ProductComponent, 0, len(r.components[productID]))
	for _, pc := range r.components[productID] {
		pc.SupplyItem = r.items[pc.SupplyItemID]
		comps = append(comps, pc)
	}
	return comps, nil
}

func (r *stubProductRepo) SaveComponent(_ context.Context, pc *model.ProductComponent) error {
	comps := r.components[pc.ProductID]
	for i := range comps {
		if comps[i].SupplyItemID == pc.SupplyItemID {
			comps[i].Quantity = pc.Quantity
			return nil
		}
	}
	r.components[pc.ProductID] = append(comps, model.ProductComponent{
		ProductID:    pc.ProductID,
		SupplyItemID: pc.SupplyItemID,
		Quantity:     pc.Quantity,
	})
	return nil
}

func (r *stubProductRepo) DeleteComponent(_ context.Context, pc *model.ProductComponent) error {
	comps := r.components[pc.ProductID]
	for i := range comps {
		if comps[i].SupplyItemID == pc.SupplyItemID {
			r.components[pc.ProductID] = append(comps[:i], comps[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// ── Supply item repository stub ──────────────────────────────────────────────

type stubSupplyItemRepo struct {
	items     map[uuid.UUID]*model.SupplyItem
	suppliers map[uuid.UUID]*model.Supplier
}

func newStubSupplyItemRepo(items map[uuid.UUID]*model.SupplyItem) *stubSupplyItemRepo {
	return &stubSupplyItemRepo{
		items:     items,
		suppliers: make(map[uuid.UUID]*model.Supplier),
	}
}

func (r *stubSupplyItemRepo) add(si model.SupplyItem) uuid.UUID {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	if si.Status == 0 {
		si.Status = model.SupplyItemAvailable
	}
	r.items[si.ID] = &si
	return si.ID
}

func (r *stubSupplyItemRepo) Create(_ context.Context, si *model.SupplyItem) error {
	si.ID = r.add(*si)
	return nil
}

func (r *stubSupplyItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SupplyItem, error) {
	si, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	loaded := *si
	loaded.Supplier = r.suppliers[si.SupplierID]
	return &loaded, nil
}

func (r *stubSupplyItemRepo) List(_ context.Context, _ repository.SupplyItemFilter) ([]model.SupplyItem, int64, error) {
	var out []model.SupplyItem
	for _, si := range r.items {
		out = append(out, *si)
	}
	return out, int64(len(out)), nil
}

func (r *stubSupplyItemRepo) Save(_ context.Context, si *model.SupplyItem) error {
	stored := *si
	stored.Supplier = nil
	r.items[si.ID] = &stored
	return nil
}

func (r *stubSupplyItemRepo) FindAlternatives(_ context.Context, filter repository.AlternativeFilter) ([]model.SupplyItem, error) {
	var out []model.SupplyItem
	for _, si := range r.items {
		if si.ManufacturerProductCode == "" || si.ManufacturerProductCode != filter.ManufacturerProductCode {
			continue
		}
		if si.ID == filter.ExcludeID {
			continue
		}
		if filter.EANCode != "" && si.EANCode != filter.EANCode {
			continue
		}
		if filter.ManufacturerPrefix != "" && si.Manufacturer != "" &&
			si.Manufacturer[:1] != filter.ManufacturerPrefix {
			continue
		}
		if filter.InStockOnly && si.Stock <= 0 {
			continue
		}
		if filter.AvailableOnly && si.Status != model.SupplyItemAvailable {
			continue
		}
		out = append(out, *si)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PurchasePrice.LessThan(out[j].PurchasePrice)
	})
	return out, nil
}

// ── Margin range repository stub ─────────────────────────────────────────────

type stubMarginRangeRepo struct {
	ranges []model.MarginRange
}

func (r *stubMarginRangeRepo) add(mr model.MarginRange) uuid.UUID {
	if mr.ID == uuid.Nil {
		mr.ID = uuid.New()
	}
	r.ranges = append(r.ranges, mr)
	return mr.ID
}

func (r *stubMarginRangeRepo) Create(_ context.Context, mr *model.MarginRange) error {
	mr.ID = r.add(*mr)
	return nil
}

func (r *stubMarginRangeRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.ranges {
		if r.ranges[i].ID == id {
			r.ranges = append(r.ranges[:i], r.ranges[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *stubMarginRangeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MarginRange, error) {
	for i := range r.ranges {
		if r.ranges[i].ID == id {
			mr := r.ranges[i]
			return &mr, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubMarginRangeRepo) List(_ context.Context) ([]model.MarginRange, error) {
	return append([]model.MarginRange(nil), r.ranges...), nil
}

func (r *stubMarginRangeRepo) ForProduct(_ context.Context, productID uuid.UUID) ([]model.MarginRange, error) {
	var out []model.MarginRange
	for _, mr := range r.ranges {
		if mr.ProductID != nil && *mr.ProductID == productID {
			out = append(out, mr)
		}
	}
	return out, nil
}

func (r *stubMarginRangeRepo) ForSupplier(_ context.Context, supplierID uuid.UUID) ([]model.MarginRange, error) {
	var out []model.MarginRange
	for _, mr := range r.ranges {
		if mr.SupplierID != nil && *mr.SupplierID == supplierID && mr.ProductID == nil {
			out = append(out, mr)
		}
	}
	return out, nil
}

func (r *stubMarginRangeRepo) SystemWide(_ context.Context) ([]model.MarginRange, error) {
	var out []model.MarginRange
	for _, mr := range r.ranges {
		if mr.SystemWide() {
			out = append(out, mr)
		}
	}
	return out, nil
}

// ── Tax class repository stub ────────────────────────────────────────────────

type stubTaxClassRepo struct {
	classes map[uuid.UUID]*model.TaxClass
}

func newStubTaxClassRepo() *stubTaxClassRepo {
	return &stubTaxClassRepo{classes: make(map[uuid.UUID]*model.TaxClass)}
}

func (r *stubTaxClassRepo) add(tc model.TaxClass) uuid.UUID {
	if tc.ID == uuid.Nil {
		tc.ID = uuid.New()
	}
	r.classes[tc.ID] = &tc
	return tc.ID
}

func (r *stubTaxClassRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TaxClass, error) {
	tc, ok := r.classes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	loaded := *tc
	return &loaded, nil
}

func (r *stubTaxClassRepo) List(_ context.Context) ([]model.TaxClass, error) {
	var out []model.TaxClass
	for _, tc := range r.classes {
		out = append(out, *tc)
	}
	return out, nil
}

func (r *stubTaxClassRepo) FindOrCreateByPercentage(_ context.Context, name string, percentage decimal.Decimal) (*model.TaxClass, error) {
	for _, tc := range r.classes {
		if tc.Percentage.Equal(percentage) {
			loaded := *tc
			return &loaded, nil
		}
	}
	tc := model.TaxClass{ID: uuid.New(), Name: name, Percentage: percentage}
	r.classes[tc.ID] = &tc
	loaded := tc
	return &loaded, nil
}

// ── History repository stub ──────────────────────────────────────────────────

type stubHistoryRepo struct {
	entries []model.HistoryEntry
}

func (r *stubHistoryRepo) Record(_ context.Context, message, category, subjectType string, subjectID uuid.UUID) error {
	r.entries = append(r.entries, model.HistoryEntry{
		ID:          uuid.New(),
		Message:     message,
		Category:    category,
		SubjectType: subjectType,
		SubjectID:   subjectID,
	})
	return nil
}

func (r *stubHistoryRepo) List(_ context.Context, category string, _ int) ([]model.HistoryEntry, error) {
	var out []model.HistoryEntry
	for _, e := range r.entries {
		if category == "" || e.Category == category {
			out = append(out, e)
		}
	}
	return out, nil
}

// ── Test environment ─────────────────────────────────────────────────────────

type testEnv struct {
	products *stubProductRepo
	supply   *stubSupplyItemRepo
	ranges   *stubMarginRangeRepo
	taxes    *stubTaxClassRepo
	history  *stubHistoryRepo

	taxClass model.TaxClass

	productS ProductService
	itemS    SupplyItemService
	rangeS   MarginRangeService
	syncS    SupplySyncService
}

// newTestEnv builds the full service graph over in-memory stubs with a
// system-wide 10% catch-all margin and an 8% tax class.
func newTestEnv() *testEnv {
	items := make(map[uuid.UUID]*model.SupplyItem)

	env := &testEnv{
		products: newStubProductRepo(items),
		supply:   newStubSupplyItemRepo(items),
		ranges:   &stubMarginRangeRepo{},
		taxes:    newStubTaxClassRepo(),
		history:  &stubHistoryRepo{},
	}

	env.ranges.add(model.MarginRange{MarginPercentage: dec("10")})

	taxID := env.taxes.add(model.TaxClass{Name: "Standard", Percentage: dec("8")})
	env.taxClass = *env.taxes.classes[taxID]

	engine := pricing.NewEngine(pricing.NoRounding{})
	env.productS = NewProductService(env.products, env.ranges, env.taxes, env.supply, env.history, engine, nil, PricingDefaults{
		TaxClassName:  "Standard",
		TaxPercentage: "8",
	})
	env.itemS = NewSupplyItemService(env.supply, env.products, env.history, env.productS)
	env.rangeS = NewMarginRangeService(env.ranges, env.products, env.history, env.productS)
	env.syncS = NewSupplySyncService(env.products, env.supply, env.ranges, env.history, env.productS)
	return env
}

// addSuppliedProduct creates a supply item and its backed product together.
func (env *testEnv) addSuppliedProduct(name string, purchase string, stock int) (uuid.UUID, uuid.UUID) {
	supplierID := uuid.New()
	itemID := env.supply.add(model.SupplyItem{
		SupplierID:              supplierID,
		Name:                    name,
		ManufacturerProductCode: "MPC-" + name,
		SupplierProductCode:     "SPC-" + name,
		Manufacturer:            "Acme",
		PurchasePrice:           dec(purchase),
		Stock:                   stock,
	})
	productID := env.products.add(model.Product{
		Name:                    name,
		Manufacturer:            "Acme",
		ManufacturerProductCode: "MPC-" + name,
		SupplierProductCode:     "SPC-" + name,
		PurchasePrice:           dec(purchase),
		Stock:                   stock,
		TaxClassID:              env.taxClass.ID,
		TaxClass:                env.taxClass,
		SupplierID:              &supplierID,
		SupplyItemID:            &itemID,
		Available:               true,
		Visible:                 true,
	})
	return productID, itemID
}
