package tickets

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rcabrera/tillpoint-backend/internal/ledger"
	"github.com/rcabrera/tillpoint-backend/pkg/enums"
)

func setupTicketsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS register_tickets (
  id TEXT PRIMARY KEY,
  register_id TEXT NOT NULL,
  label TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'open',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS register_ticket_lines (
  ref_id TEXT PRIMARY KEY,
  ticket_id TEXT NOT NULL,
  product_id TEXT,
  name TEXT NOT NULL,
  uom_abbrev TEXT NOT NULL DEFAULT 'pc',
  size_label TEXT NOT NULL DEFAULT '',
  unit_selling_price TEXT NOT NULL,
  sale_qty TEXT NOT NULL,
  current_stock_qty TEXT NOT NULL DEFAULT '0',
  tax_rate_id TEXT,
  tax_rate_percentage TEXT NOT NULL DEFAULT '0',
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

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

func sessionWithLine(t *testing.T, name, price, qty string) *ledger.Session {
	t.Helper()
	session := ledger.NewSession("reg-1")
	productID := uuid.NewString()
	src := ledger.LineSource{
		Scheme:           enums.KeySchemeCatalog,
		ItemID:           productID,
		ProductID:        &productID,
		Name:             name,
		UOMAbbrev:        "ea",
		UnitSellingPrice: dec(price),
		CurrentStockQty:  dec("100"),
	}
	require.NoError(t, session.UpsertCatalogItem(src, decPtr(qty), false, ledger.CeilingOpts{}))
	return session
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func TestSaveDraftAndImport(t *testing.T) {
	ctx := context.Background()
	conn := setupTicketsTestDB(t)
	svc := newTestService(t, conn)

	session := sessionWithLine(t, "Drip Coffee", "50", "2")
	ticket, err := svc.SaveDraft(ctx, session, "reg-1", "table 4")
	require.NoError(t, err)
	require.Len(t, ticket.Lines, 1)
	require.NotEmpty(t, ticket.Lines[0].RefID)

	// Re-import into a fresh session under ticket provenance.
	fresh := ledger.NewSession("reg-1")
	require.NoError(t, svc.ImportDraft(ctx, fresh, ticket.ID, ledger.CeilingOpts{}))

	item := fresh.Items()[ticket.Lines[0].RefID]
	require.NotNil(t, item)
	require.Equal(t, enums.KeySchemeTicketLine, item.Scheme)
	require.True(t, item.QtyOrZero().Equal(dec("2")))
	require.True(t, fresh.Totals().GrandTotalAmount.Equal(dec("100")))

	// An imported ticket cannot be imported twice.
	require.Error(t, svc.ImportDraft(ctx, ledger.NewSession("reg-1"), ticket.ID, ledger.CeilingOpts{}))
}

func TestSaveDraftRefusesEmptyLedger(t *testing.T) {
	ctx := context.Background()
	conn := setupTicketsTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.SaveDraft(ctx, ledger.NewSession("reg-1"), "reg-1", "")
	require.Error(t, err)
}

func TestImportRevalidatesStockCeiling(t *testing.T) {
	ctx := context.Background()
	conn := setupTicketsTestDB(t)
	svc := newTestService(t, conn)

	session := ledger.NewSession("reg-1")
	productID := uuid.NewString()
	src := ledger.LineSource{
		Scheme:           enums.KeySchemeCatalog,
		ItemID:           productID,
		ProductID:        &productID,
		Name:             "Drip Coffee",
		UnitSellingPrice: dec("50"),
		CurrentStockQty:  dec("1"),
	}
	require.NoError(t, session.UpsertCatalogItem(src, decPtr("3"), false, ledger.CeilingOpts{}))

	ticket, err := svc.SaveDraft(ctx, session, "reg-1", "")
	require.NoError(t, err)

	fresh := ledger.NewSession("reg-1")
	require.NoError(t, svc.ImportDraft(ctx, fresh, ticket.ID, ledger.CeilingOpts{EnableStockCeiling: true}))
	require.Equal(t, ledger.MsgInsufficientStock, fresh.Errors()[ticket.Lines[0].RefID])
}

func TestDeleteLineAndListOpen(t *testing.T) {
	ctx := context.Background()
	conn := setupTicketsTestDB(t)
	svc := newTestService(t, conn)

	session := sessionWithLine(t, "Drip Coffee", "50", "2")
	ticket, err := svc.SaveDraft(ctx, session, "reg-1", "")
	require.NoError(t, err)

	open, err := svc.ListOpen(ctx, "reg-1")
	require.NoError(t, err)
	require.Len(t, open, 1)

	require.NoError(t, svc.DeleteLine(ctx, ticket.Lines[0].RefID))
	require.Error(t, svc.DeleteLine(ctx, ticket.Lines[0].RefID))

	require.NoError(t, svc.Discard(ctx, ticket.ID))
	open, err = svc.ListOpen(ctx, "reg-1")
	require.NoError(t, err)
	require.Empty(t, open)
}
