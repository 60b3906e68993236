package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rcabrera/tillpoint-backend/internal/ledger"
	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	"github.com/rcabrera/tillpoint-backend/pkg/enums"
)

// Service resolves sales-order lines into ledger line sources.
type Service interface {
	OrderLine(ctx context.Context, lineID uuid.UUID) (ledger.LineSource, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.SalesOrder, error)
	ListOutstanding(ctx context.Context, limit int) ([]models.SalesOrder, error)
}

type productLoader interface {
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productLoader
}

// NewService constructs an orders service instance.
func NewService(repo *Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

// OrderLine snapshots an order line into an order-scheme line source. Price
// and tax are the ones frozen at order time; stock comes from the live
// product row so the stock ceiling stays current.
func (s *service) OrderLine(ctx context.Context, lineID uuid.UUID) (ledger.LineSource, error) {
	line, err := s.repo.FindLine(ctx, lineID)
	if err != nil {
		return ledger.LineSource{}, err
	}

	productID := line.ProductID.String()
	src := ledger.LineSource{
		Scheme:            enums.KeySchemeOrderLine,
		ItemID:            line.ID.String(),
		ProductID:         &productID,
		Name:              line.Name,
		UOMAbbrev:         line.UOMAbbrev,
		UnitSellingPrice:  line.OrderUnitSellingPrice,
		OrderQty:          line.OrderQty,
		FulfilledOrderQty: line.FulfilledOrderQty,
		TaxRatePercentage: line.TaxRatePercentage,
	}
	if line.TaxRateID != nil {
		taxID := line.TaxRateID.String()
		src.TaxID = &taxID
	}

	product, err := s.products.FindProduct(ctx, line.ProductID)
	if err != nil {
		return ledger.LineSource{}, err
	}
	src.CurrentStockQty = product.CurrentStockQty
	return src, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.SalesOrder, error) {
	return s.repo.FindOrder(ctx, orderID)
}

func (s *service) ListOutstanding(ctx context.Context, limit int) ([]models.SalesOrder, error) {
	return s.repo.ListOutstanding(ctx, limit)
}
