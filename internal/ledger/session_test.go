package ledger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rcabrera/tillpoint-backend/pkg/enums"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func catalogSource(id, name, price string) LineSource {
	return LineSource{
		Scheme:           enums.KeySchemeCatalog,
		ItemID:           id,
		Name:             name,
		UOMAbbrev:        "ea",
		UnitSellingPrice: dec(price),
		CurrentStockQty:  dec("100"),
	}
}

func taxableSource(id, name, price, ratePct string) LineSource {
	src := catalogSource(id, name, price)
	taxID := "vat"
	src.TaxID = &taxID
	src.TaxRatePercentage = dec(ratePct)
	return src
}

func TestUpsertCatalogItemExemptTotals(t *testing.T) {
	s := NewSession("reg-1")

	src := catalogSource("1", "Drip Coffee", "50")
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("2"), false, CeilingOpts{}))

	item := s.Items()["1"]
	require.NotNil(t, item)
	require.True(t, item.SaleSubtotal.Equal(dec("100")))

	totals := s.Totals()
	require.True(t, totals.GrandTotalAmount.Equal(dec("100")))
	require.True(t, totals.TotalTaxExemptAmount.Equal(dec("100")))
	require.True(t, totals.TotalTaxableAmount.IsZero())
	require.True(t, totals.TotalTaxAmount.IsZero())
}

func TestTaxInclusiveSplit(t *testing.T) {
	s := NewSession("reg-1")

	src := taxableSource("2", "Sandwich", "112", "12")
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("1"), false, CeilingOpts{}))

	totals := s.Totals()
	require.True(t, totals.GrandTotalAmount.Equal(dec("112")))
	require.True(t, totals.TotalTaxableAmount.Equal(dec("112")))
	require.True(t, totals.TotalTaxableNetAmount.Equal(dec("100")))
	require.True(t, totals.TotalTaxAmount.Equal(dec("12")))
	require.True(t, totals.TotalTaxExemptAmount.IsZero())
}

func TestTaxSplitRemainderIsExact(t *testing.T) {
	s := NewSession("reg-1")

	src := taxableSource("3", "Pastry", "10", "7")
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("1"), false, CeilingOpts{}))

	totals := s.Totals()
	sum := totals.TotalTaxableNetAmount.Add(totals.TotalTaxAmount)
	require.True(t, sum.Equal(totals.TotalTaxableAmount))
}

func TestBlankQuantityYieldsZeroSubtotal(t *testing.T) {
	s := NewSession("reg-1")

	src := catalogSource("1", "Drip Coffee", "50")
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("2"), false, CeilingOpts{}))
	s.SetFocused(&src)
	require.NoError(t, s.UpdateQty("1", "", CeilingOpts{}))

	item := s.Items()["1"]
	require.NotNil(t, item)
	require.Nil(t, item.SaleQty)
	require.True(t, item.SaleSubtotal.IsZero())
	require.True(t, s.Totals().GrandTotalAmount.IsZero())
}

func TestStockCeilingWarnsButCommits(t *testing.T) {
	s := NewSession("reg-1")

	src := catalogSource("1", "Drip Coffee", "50")
	src.CurrentStockQty = dec("5")
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("6"), false, CeilingOpts{EnableStockCeiling: true}))

	item := s.Items()["1"]
	require.True(t, item.QtyOrZero().Equal(dec("6")))
	require.True(t, item.SaleSubtotal.Equal(dec("300")))
	require.Equal(t, MsgInsufficientStock, s.Errors()["1"])
	require.True(t, s.Totals().GrandTotalAmount.Equal(dec("300")))
}

func TestStockCeilingClearsWhenReduced(t *testing.T) {
	s := NewSession("reg-1")

	src := catalogSource("1", "Drip Coffee", "50")
	src.CurrentStockQty = dec("5")
	opts := CeilingOpts{EnableStockCeiling: true}
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("6"), false, opts))
	require.Equal(t, MsgInsufficientStock, s.Errors()["1"])

	s.SetFocused(&src)
	require.NoError(t, s.UpdateQty("1", "5", opts))
	require.Empty(t, s.Errors())
}

func TestOrderCeilingMessage(t *testing.T) {
	s := NewSession("reg-1")

	src := LineSource{
		Scheme:            enums.KeySchemeOrderLine,
		ItemID:            "ol-9",
		Name:              "Beans 1kg",
		UOMAbbrev:         "bag",
		UnitSellingPrice:  dec("400"),
		CurrentStockQty:   dec("50"),
		OrderQty:          dec("10"),
		FulfilledOrderQty: dec("7"),
	}
	require.NoError(t, s.UpsertOrderLine(src, decPtr("4"), false, CeilingOpts{EnableOrderCeiling: true}))

	item := s.Items()["ol-9"]
	require.True(t, item.QtyOrZero().Equal(dec("4")))
	require.Equal(t, MsgOrderQtyExceeded, s.Errors()["ol-9"])
}

func TestStockCeilingTakesPrecedence(t *testing.T) {
	s := NewSession("reg-1")

	src := LineSource{
		Scheme:            enums.KeySchemeOrderLine,
		ItemID:            "ol-9",
		Name:              "Beans 1kg",
		UnitSellingPrice:  dec("400"),
		CurrentStockQty:   dec("2"),
		OrderQty:          dec("10"),
		FulfilledOrderQty: dec("7"),
	}
	opts := CeilingOpts{EnableStockCeiling: true, EnableOrderCeiling: true}
	require.NoError(t, s.UpsertOrderLine(src, decPtr("4"), false, opts))
	require.Equal(t, MsgInsufficientStock, s.Errors()["ol-9"])
}

func TestUpdateQtyIgnoresStaleTarget(t *testing.T) {
	s := NewSession("reg-1")

	first := catalogSource("1", "Drip Coffee", "50")
	second := catalogSource("2", "Espresso", "60")
	require.NoError(t, s.UpsertCatalogItem(first, decPtr("1"), false, CeilingOpts{}))
	require.NoError(t, s.UpsertCatalogItem(second, decPtr("1"), false, CeilingOpts{}))

	// Focus moved to line 2; a late update against line 1 must not land.
	s.SetFocused(&second)
	require.NoError(t, s.UpdateQty("1", "99", CeilingOpts{}))

	require.True(t, s.Items()["1"].QtyOrZero().Equal(dec("1")))
	require.True(t, s.Items()["2"].QtyOrZero().Equal(dec("1")))
}

func TestUpdateQtyRejectsMalformedValue(t *testing.T) {
	s := NewSession("reg-1")

	src := catalogSource("1", "Drip Coffee", "50")
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("1"), false, CeilingOpts{}))
	s.SetFocused(&src)

	require.Error(t, s.UpdateQty("1", "abc", CeilingOpts{}))
	require.Error(t, s.UpdateQty("1", "-2", CeilingOpts{}))
	require.True(t, s.Items()["1"].QtyOrZero().Equal(dec("1")))
}

func TestIncreaseDecreaseFocused(t *testing.T) {
	s := NewSession("reg-1")

	// No focus: both are no-ops.
	s.IncreaseQty(CeilingOpts{})
	s.DecreaseQty(CeilingOpts{})
	require.Empty(t, s.Items())

	src := catalogSource("1", "Drip Coffee", "50")
	s.SetFocused(&src)
	s.IncreaseQty(CeilingOpts{})
	s.IncreaseQty(CeilingOpts{})
	require.True(t, s.Items()["1"].QtyOrZero().Equal(dec("2")))

	s.DecreaseQty(CeilingOpts{})
	s.DecreaseQty(CeilingOpts{})
	s.DecreaseQty(CeilingOpts{})
	item := s.Items()["1"]
	require.NotNil(t, item, "decrement keeps the entry in the map")
	require.True(t, item.QtyOrZero().IsZero())
}

func TestAutoIncreaseAccumulates(t *testing.T) {
	s := NewSession("reg-1")

	src := catalogSource("1", "Drip Coffee", "50")
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("2"), true, CeilingOpts{}))
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("3"), true, CeilingOpts{}))
	require.True(t, s.Items()["1"].QtyOrZero().Equal(dec("5")))

	// Without autoIncrease the quantity is replaced.
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("1"), false, CeilingOpts{}))
	require.True(t, s.Items()["1"].QtyOrZero().Equal(dec("1")))
}

func TestSizedOptionKeysDoNotCollide(t *testing.T) {
	s := NewSession("reg-1")

	plain := catalogSource("5", "Tea", "30")
	sized := LineSource{
		Scheme:           enums.KeySchemeSizedOption,
		ItemID:           "5",
		OptionID:         "2",
		Name:             "Tea",
		SizeLabel:        "Large",
		UnitSellingPrice: dec("45"),
		CurrentStockQty:  dec("100"),
	}
	require.NoError(t, s.UpsertCatalogItem(plain, decPtr("1"), false, CeilingOpts{}))
	require.NoError(t, s.UpsertSizedOption(sized, decPtr("1"), false, CeilingOpts{}))

	require.Len(t, s.Items(), 2)
	require.NotNil(t, s.Items()["5"])
	require.NotNil(t, s.Items()["5&&2"])
}

func TestUpsertSchemeValidation(t *testing.T) {
	s := NewSession("reg-1")

	src := catalogSource("1", "Drip Coffee", "50")
	require.Error(t, s.UpsertOrderLine(src, decPtr("1"), false, CeilingOpts{}))

	sized := src
	sized.Scheme = enums.KeySchemeSizedOption
	require.Error(t, s.UpsertSizedOption(sized, decPtr("1"), false, CeilingOpts{}),
		"sized option without an option id")
}

func TestRemoveTicketLine(t *testing.T) {
	s := NewSession("reg-1")

	src := LineSource{
		Scheme:           enums.KeySchemeTicketLine,
		ItemID:           "ref-7",
		Name:             "Latte",
		UnitSellingPrice: dec("70"),
		CurrentStockQty:  dec("3"),
	}
	require.NoError(t, s.UpsertTicketLine(src, decPtr("5"), false, CeilingOpts{EnableStockCeiling: true}))
	require.Equal(t, MsgInsufficientStock, s.Errors()["ref-7"])
	s.SetFocused(&src)

	require.NoError(t, s.RemoveTicketLine(src))
	require.Empty(t, s.Items())
	require.Empty(t, s.Errors())
	require.Nil(t, s.Focused())
	require.True(t, s.Totals().GrandTotalAmount.IsZero())

	require.Error(t, s.RemoveTicketLine(catalogSource("1", "Drip Coffee", "50")))
}

func TestFinalizeForReview(t *testing.T) {
	s := NewSession("reg-1")

	first := catalogSource("1", "Drip Coffee", "50")
	second := catalogSource("2", "Espresso", "60")
	third := catalogSource("3", "Mocha", "80")
	require.NoError(t, s.UpsertCatalogItem(first, decPtr("1"), false, CeilingOpts{}))
	require.NoError(t, s.UpsertCatalogItem(second, decPtr("2"), false, CeilingOpts{}))
	require.NoError(t, s.UpsertCatalogItem(third, nil, false, CeilingOpts{}))
	s.SetFocused(&second)

	review := s.FinalizeForReview()

	require.Equal(t, []string{"1", "2"}, review.LineKeys, "blank line stripped, add order kept")
	require.Nil(t, s.Focused())
	require.Len(t, s.Items(), 2)
	require.True(t, review.Totals.GrandTotalAmount.Equal(dec("170")))

	again := s.FinalizeForReview()
	require.Equal(t, review.LineKeys, again.LineKeys)
	require.True(t, again.Totals.GrandTotalAmount.Equal(review.Totals.GrandTotalAmount))
}

func TestReset(t *testing.T) {
	s := NewSession("reg-1")

	src := catalogSource("1", "Drip Coffee", "50")
	src.CurrentStockQty = dec("0")
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("1"), false, CeilingOpts{EnableStockCeiling: true}))
	s.SetFocused(&src)
	require.NotEmpty(t, s.Errors())

	s.Reset()
	require.Empty(t, s.Items())
	require.Empty(t, s.Errors())
	require.Nil(t, s.Focused())
	require.True(t, s.Totals().GrandTotalAmount.IsZero())
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewSession("reg-1")

	src := taxableSource("2", "Sandwich", "112", "12")
	require.NoError(t, s.UpsertCatalogItem(src, decPtr("1"), false, CeilingOpts{}))
	s.SetFocused(&src)

	data, err := s.MarshalSnapshot()
	require.NoError(t, err)

	restored, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, "reg-1", restored.ID())
	require.NotNil(t, restored.Focused())
	require.True(t, restored.Totals().TotalTaxAmount.Equal(dec("12")))

	// The restored session keeps mutating correctly.
	restored.SetFocused(&src)
	restored.IncreaseQty(CeilingOpts{})
	require.True(t, restored.Items()["2"].QtyOrZero().Equal(dec("2")))
}

func TestManagerPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	mgr, err := NewManager(store, nil)
	require.NoError(t, err)

	src := catalogSource("1", "Drip Coffee", "50")
	err = mgr.Mutate(ctx, "reg-1", func(s *Session) error {
		return s.UpsertCatalogItem(src, decPtr("2"), false, CeilingOpts{})
	})
	require.NoError(t, err)

	// A second manager over the same store sees the persisted state.
	fresh, err := NewManager(store, nil)
	require.NoError(t, err)
	err = fresh.View(ctx, "reg-1", func(s *Session) error {
		require.True(t, s.Totals().GrandTotalAmount.Equal(dec("100")))
		return nil
	})
	require.NoError(t, err)
}

func TestManagerDiscard(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	mgr, err := NewManager(store, nil)
	require.NoError(t, err)

	src := catalogSource("1", "Drip Coffee", "50")
	require.NoError(t, mgr.Mutate(ctx, "reg-1", func(s *Session) error {
		return s.UpsertCatalogItem(src, decPtr("2"), false, CeilingOpts{})
	}))

	require.NoError(t, mgr.Discard(ctx, "reg-1"))

	_, found, err := store.Load(ctx, "reg-1")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, mgr.View(ctx, "reg-1", func(s *Session) error {
		require.Empty(t, s.Items())
		return nil
	}))
}

type countingStore struct {
	*MemoryStore
	loads int32
}

func (c *countingStore) Load(ctx context.Context, sessionID string) ([]byte, bool, error) {
	atomic.AddInt32(&c.loads, 1)
	return c.MemoryStore.Load(ctx, sessionID)
}

func TestManagerLoadsSnapshotOncePerSession(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: NewMemoryStore()}

	mgr, err := NewManager(store, nil)
	require.NoError(t, err)

	src := catalogSource("1", "Drip Coffee", "50")
	require.NoError(t, mgr.Mutate(ctx, "reg-1", func(s *Session) error {
		return s.UpsertCatalogItem(src, decPtr("1"), false, CeilingOpts{})
	}))
	require.NoError(t, mgr.Mutate(ctx, "reg-1", func(s *Session) error {
		return s.UpsertCatalogItem(src, decPtr("2"), false, CeilingOpts{})
	}))
	require.NoError(t, mgr.View(ctx, "reg-1", func(s *Session) error {
		return nil
	}))

	require.Equal(t, int32(1), atomic.LoadInt32(&store.loads))
}

func TestManagerConcurrentFirstTouchSharesOneSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	mgr, err := NewManager(store, nil)
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := catalogSource(fmt.Sprintf("%d", i+1), fmt.Sprintf("Item %d", i+1), "10")
			errs[i] = mgr.Mutate(ctx, "reg-1", func(s *Session) error {
				return s.UpsertCatalogItem(src, decPtr("1"), false, CeilingOpts{})
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// Every mutation must land on the same live session, whichever
	// first-touch load won.
	require.NoError(t, mgr.View(ctx, "reg-1", func(s *Session) error {
		require.Len(t, s.Items(), workers)
		require.True(t, s.Totals().GrandTotalAmount.Equal(dec("160")))
		return nil
	}))
}
