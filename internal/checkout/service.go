package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rcabrera/tillpoint-backend/internal/catalog"
	"github.com/rcabrera/tillpoint-backend/internal/ledger"
	"github.com/rcabrera/tillpoint-backend/internal/orders"
	"github.com/rcabrera/tillpoint-backend/internal/receipt"
	"github.com/rcabrera/tillpoint-backend/pkg/db"
	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	"github.com/rcabrera/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
	"github.com/rcabrera/tillpoint-backend/pkg/metrics"
	"github.com/rcabrera/tillpoint-backend/pkg/pubsub"
)

// Result is what a completed checkout hands back to the transport layer.
type Result struct {
	Invoice     *models.Invoice
	ReceiptText string
}

// Options tunes receipt rendering.
type Options struct {
	ReceiptTitle       string
	ReceiptNumberWidth int
	ShowReceiptHeader  bool
}

// SalePublisher emits a completed-sale event after the invoice commits.
type SalePublisher interface {
	PublishSaleCompleted(ctx context.Context, event pubsub.SaleCompletedEvent) error
}

// Service finalizes a session into an invoice, stock movements and a
// rendered receipt.
type Service interface {
	Complete(ctx context.Context, session *ledger.Session, registerID string) (*Result, error)
}

type service struct {
	dbClient  *db.Client
	repo      *Repository
	products  *catalog.Repository
	orderRepo *orders.Repository
	publisher SalePublisher
	sales     *metrics.SaleMetrics
	opts      Options
	logg      *logger.Logger
}

// NewService constructs a checkout service instance. The publisher may be
// nil when event publishing is disabled.
func NewService(dbClient *db.Client, repo *Repository, products *catalog.Repository, orderRepo *orders.Repository, publisher SalePublisher, sales *metrics.SaleMetrics, opts Options, logg *logger.Logger) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{
		dbClient:  dbClient,
		repo:      repo,
		products:  products,
		orderRepo: orderRepo,
		publisher: publisher,
		sales:     sales,
		opts:      opts,
		logg:      logg,
	}, nil
}

// Complete finalizes the sale. The session is only reset after the invoice
// transaction commits; a failed persist leaves the in-progress sale intact
// so the operator can retry.
func (s *service) Complete(ctx context.Context, session *ledger.Session, registerID string) (*Result, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session is required")
	}
	if session.HasErrors() {
		s.sales.IncFailed(registerID, "line_errors")
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "resolve line warnings before checkout")
	}

	review := session.FinalizeForReview()
	if len(review.Items) == 0 {
		s.sales.IncFailed(registerID, "empty_sale")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale has no lines")
	}

	issuedAt := time.Now().UTC()
	invoice := &models.Invoice{
		ID:                    uuid.New(),
		RegisterID:            registerID,
		GrandTotalAmount:      review.Totals.GrandTotalAmount,
		TotalTaxableAmount:    review.Totals.TotalTaxableAmount,
		TotalTaxableNetAmount: review.Totals.TotalTaxableNetAmount,
		TotalTaxExemptAmount:  review.Totals.TotalTaxExemptAmount,
		TotalTaxAmount:        review.Totals.TotalTaxAmount,
		IssuedAt:              issuedAt,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txProducts := s.products.WithTx(tx)
		txOrders := s.orderRepo.WithTx(tx)

		number, err := txRepo.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		for _, item := range review.Items {
			invoiceItem, err := buildInvoiceItem(invoice.ID, item)
			if err != nil {
				return err
			}
			invoice.Items = append(invoice.Items, *invoiceItem)
		}
		if err := txRepo.CreateInvoice(ctx, invoice); err != nil {
			return err
		}

		for _, item := range review.Items {
			qty := item.QtyOrZero()
			if item.ProductID != nil {
				productID, err := uuid.Parse(*item.ProductID)
				if err != nil {
					return pkgerrors.New(pkgerrors.CodeInternal, "line carries a malformed product id")
				}
				if err := txProducts.DecrementStock(ctx, productID, qty); err != nil {
					return err
				}
			}
			if item.Scheme == enums.KeySchemeOrderLine {
				lineID, err := uuid.Parse(item.ItemID)
				if err != nil {
					return pkgerrors.New(pkgerrors.CodeInternal, "line carries a malformed order line id")
				}
				if err := txOrders.BumpFulfilled(ctx, lineID, qty); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		s.sales.IncFailed(registerID, "persist")
		return nil, err
	}

	text, err := s.renderReceipt(ctx, invoice, review)
	if err != nil {
		// The sale is committed; a broken receipt must not undo it.
		if s.logg != nil {
			s.logg.Error(ctx, "rendering receipt after commit", err)
		}
		text = ""
	}

	session.Reset()

	s.sales.IncCompleted(registerID)
	amount, _ := invoice.GrandTotalAmount.Float64()
	s.sales.ObserveAmount(registerID, amount)
	s.publish(ctx, invoice)

	return &Result{Invoice: invoice, ReceiptText: text}, nil
}

func buildInvoiceItem(invoiceID uuid.UUID, item *ledger.LineItem) (*models.InvoiceItem, error) {
	row := &models.InvoiceItem{
		ID:                uuid.New(),
		InvoiceID:         invoiceID,
		LineKey:           item.Key,
		KeyScheme:         item.Scheme,
		Name:              item.Name,
		UOMAbbrev:         item.UOMAbbrev,
		SizeLabel:         item.SizeLabel,
		UnitSellingPrice:  item.UnitSellingPrice,
		SaleQty:           item.QtyOrZero(),
		SaleSubtotal:      item.SaleSubtotal,
		TaxRatePercentage: item.TaxRatePercentage,
	}
	if item.ProductID != nil {
		productID, err := uuid.Parse(*item.ProductID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "line carries a malformed product id")
		}
		row.ProductID = &productID
	}
	if item.Scheme == enums.KeySchemeOrderLine {
		lineID, err := uuid.Parse(item.ItemID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "line carries a malformed order line id")
		}
		row.OrderLineID = &lineID
	}
	if item.TaxID != nil {
		taxID, err := uuid.Parse(*item.TaxID)
		if err == nil {
			row.TaxRateID = &taxID
		}
	}
	return row, nil
}

func (s *service) renderReceipt(ctx context.Context, invoice *models.Invoice, review ledger.Review) (string, error) {
	r := receipt.Receipt{
		Title:         s.opts.ReceiptTitle,
		IssuedAt:      invoice.IssuedAt,
		InvoiceNumber: invoice.InvoiceNumber,
		NumberWidth:   s.opts.ReceiptNumberWidth,
		Totals: receipt.Totals{
			TaxableAmount:    invoice.TotalTaxableAmount,
			TaxableNetAmount: invoice.TotalTaxableNetAmount,
			TaxExemptAmount:  invoice.TotalTaxExemptAmount,
			TaxAmount:        invoice.TotalTaxAmount,
			GrandTotalAmount: invoice.GrandTotalAmount,
		},
	}

	if s.opts.ShowReceiptHeader {
		profile, err := s.repo.FindMerchantProfile(ctx)
		if err != nil {
			return "", err
		}
		if profile != nil {
			r.Merchant = &receipt.Merchant{
				DisplayName: profile.DisplayName,
				BranchName:  profile.BranchName,
				Address:     profile.Address,
			}
		}
	}

	for _, item := range review.Items {
		r.Lines = append(r.Lines, receipt.Line{
			Name:           item.Name,
			SizeLabel:      item.SizeLabel,
			SizeAnnotation: item.SizeAnnotation,
			Qty:            item.QtyOrZero(),
			UOMAbbrev:      item.UOMAbbrev,
			UnitPrice:      item.UnitSellingPrice,
			Subtotal:       item.SaleSubtotal,
			Taxable:        item.Taxable(),
		})
	}

	return receipt.Render(r), nil
}

func (s *service) publish(ctx context.Context, invoice *models.Invoice) {
	if s.publisher == nil {
		return
	}
	event := pubsub.SaleCompletedEvent{
		InvoiceID:        invoice.ID.String(),
		InvoiceNumber:    invoice.InvoiceNumber,
		RegisterID:       invoice.RegisterID,
		GrandTotalAmount: invoice.GrandTotalAmount.String(),
		TotalTaxAmount:   invoice.TotalTaxAmount.String(),
		LineCount:        len(invoice.Items),
		IssuedAt:         invoice.IssuedAt,
	}
	if err := s.publisher.PublishSaleCompleted(ctx, event); err != nil && s.logg != nil {
		s.logg.Error(ctx, "publishing sale.completed", err)
	}
}
