package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rcabrera/tillpoint-backend/internal/catalog"
	"github.com/rcabrera/tillpoint-backend/internal/ledger"
	"github.com/rcabrera/tillpoint-backend/internal/orders"
	"github.com/rcabrera/tillpoint-backend/pkg/db"
	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	"github.com/rcabrera/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
	"github.com/rcabrera/tillpoint-backend/pkg/pubsub"
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

type capturingPublisher struct {
	events []pubsub.SaleCompletedEvent
}

func (p *capturingPublisher) PublishSaleCompleted(_ context.Context, event pubsub.SaleCompletedEvent) error {
	p.events = append(p.events, event)
	return nil
}

func newTestService(t *testing.T, conn *gorm.DB, publisher SalePublisher) Service {
	t.Helper()
	svc, err := NewService(
		db.FromConn(conn),
		NewRepository(conn),
		catalog.NewRepository(conn),
		orders.NewRepository(conn),
		publisher,
		nil,
		Options{ReceiptTitle: "SALES INVOICE", ShowReceiptHeader: true},
		nil,
	)
	require.NoError(t, err)
	return svc
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, name, price, stock string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:               uuid.New(),
		SKU:              "sku-" + uuid.NewString(),
		Name:             name,
		UOMAbbrev:        "ea",
		UnitSellingPrice: dec(price),
		CurrentStockQty:  dec(stock),
		IsActive:         true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func catalogLine(product *models.Product) ledger.LineSource {
	productID := product.ID.String()
	return ledger.LineSource{
		Scheme:           enums.KeySchemeCatalog,
		ItemID:           productID,
		ProductID:        &productID,
		Name:             product.Name,
		UOMAbbrev:        product.UOMAbbrev,
		UnitSellingPrice: product.UnitSellingPrice,
		CurrentStockQty:  product.CurrentStockQty,
	}
}

func TestCompletePersistsInvoiceAndMovesStock(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)
	publisher := &capturingPublisher{}
	svc := newTestService(t, conn, publisher)

	require.NoError(t, conn.Create(&models.MerchantProfile{
		ID:          uuid.New(),
		DisplayName: "Tillpoint Cafe",
		BranchName:  "Main Branch",
	}).Error)

	product := mustCreateProduct(t, conn, "Drip Coffee", "50", "10")

	session := ledger.NewSession("reg-1")
	require.NoError(t, session.UpsertCatalogItem(catalogLine(product), decPtr("2"), false, ledger.CeilingOpts{}))

	result, err := svc.Complete(ctx, session, "reg-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Invoice.InvoiceNumber)
	require.True(t, result.Invoice.GrandTotalAmount.Equal(dec("100")))

	var stored models.Invoice
	require.NoError(t, conn.Preload("Items").First(&stored, "id = ?", result.Invoice.ID).Error)
	require.Len(t, stored.Items, 1)
	require.True(t, stored.Items[0].SaleSubtotal.Equal(dec("100")))

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	require.True(t, reloaded.CurrentStockQty.Equal(dec("8")))

	require.Contains(t, result.ReceiptText, "Tillpoint Cafe")
	require.Contains(t, result.ReceiptText, "TOTAL 100.00")
	require.Contains(t, result.ReceiptText, "000001")

	// Session is only cleared after a successful commit.
	require.Empty(t, session.Items())

	require.Len(t, publisher.events, 1)
	require.Equal(t, int64(1), publisher.events[0].InvoiceNumber)
	require.Equal(t, "reg-1", publisher.events[0].RegisterID)
}

func TestCompleteBumpsFulfilledOrderQty(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)
	svc := newTestService(t, conn, nil)

	product := mustCreateProduct(t, conn, "Beans 1kg", "400", "50")
	line := &models.SalesOrderLine{
		ID:                    uuid.New(),
		OrderID:               uuid.New(),
		ProductID:             product.ID,
		Name:                  product.Name,
		UOMAbbrev:             "bag",
		OrderUnitSellingPrice: dec("400"),
		OrderQty:              dec("10"),
		FulfilledOrderQty:     dec("7"),
	}
	require.NoError(t, conn.Create(line).Error)

	productID := product.ID.String()
	src := ledger.LineSource{
		Scheme:            enums.KeySchemeOrderLine,
		ItemID:            line.ID.String(),
		ProductID:         &productID,
		Name:              line.Name,
		UOMAbbrev:         line.UOMAbbrev,
		UnitSellingPrice:  line.OrderUnitSellingPrice,
		CurrentStockQty:   product.CurrentStockQty,
		OrderQty:          line.OrderQty,
		FulfilledOrderQty: line.FulfilledOrderQty,
	}
	session := ledger.NewSession("reg-1")
	require.NoError(t, session.UpsertOrderLine(src, decPtr("3"), false, ledger.CeilingOpts{EnableOrderCeiling: true}))

	result, err := svc.Complete(ctx, session, "reg-1")
	require.NoError(t, err)
	require.NotNil(t, result.Invoice.Items[0].OrderLineID)

	var reloadedLine models.SalesOrderLine
	require.NoError(t, conn.First(&reloadedLine, "id = ?", line.ID).Error)
	require.True(t, reloadedLine.FulfilledOrderQty.Equal(dec("10")))

	var reloadedProduct models.Product
	require.NoError(t, conn.First(&reloadedProduct, "id = ?", product.ID).Error)
	require.True(t, reloadedProduct.CurrentStockQty.Equal(dec("47")))
}

func TestCompleteRefusesLineErrors(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)
	svc := newTestService(t, conn, nil)

	product := mustCreateProduct(t, conn, "Drip Coffee", "50", "1")
	session := ledger.NewSession("reg-1")
	require.NoError(t, session.UpsertCatalogItem(catalogLine(product), decPtr("5"), false,
		ledger.CeilingOpts{EnableStockCeiling: true}))

	_, err := svc.Complete(ctx, session, "reg-1")
	require.Error(t, err)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())

	// The in-progress sale is untouched.
	require.Len(t, session.Items(), 1)

	var count int64
	require.NoError(t, conn.Model(&models.Invoice{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCompleteRefusesEmptySale(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)
	svc := newTestService(t, conn, nil)

	session := ledger.NewSession("reg-1")
	_, err := svc.Complete(ctx, session, "reg-1")
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestInvoiceNumbersAreSequential(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)
	svc := newTestService(t, conn, nil)

	product := mustCreateProduct(t, conn, "Drip Coffee", "50", "100")

	for want := int64(1); want <= 3; want++ {
		session := ledger.NewSession("reg-1")
		require.NoError(t, session.UpsertCatalogItem(catalogLine(product), decPtr("1"), false, ledger.CeilingOpts{}))
		result, err := svc.Complete(ctx, session, "reg-1")
		require.NoError(t, err)
		require.Equal(t, want, result.Invoice.InvoiceNumber)
	}
}

func TestReceiptOmitsHeaderWhenUnconfigured(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)
	svc := newTestService(t, conn, nil)

	product := mustCreateProduct(t, conn, "Drip Coffee", "50", "10")
	session := ledger.NewSession("reg-1")
	require.NoError(t, session.UpsertCatalogItem(catalogLine(product), decPtr("1"), false, ledger.CeilingOpts{}))

	result, err := svc.Complete(ctx, session, "reg-1")
	require.NoError(t, err)
	require.False(t, strings.Contains(result.ReceiptText, "Tillpoint Cafe"))
	require.Contains(t, result.ReceiptText, "SALES INVOICE")
}
