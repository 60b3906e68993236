package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rcabrera/tillpoint-backend/internal/ledger"
	"github.com/rcabrera/tillpoint-backend/internal/pricing"
	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	"github.com/rcabrera/tillpoint-backend/pkg/enums"
)

// Service resolves catalog rows into ledger line sources.
type Service interface {
	ProductLine(ctx context.Context, productID uuid.UUID) (ledger.LineSource, error)
	OptionLine(ctx context.Context, productID, optionID uuid.UUID) (ledger.LineSource, error)
	ListProducts(ctx context.Context, search string, limit int) ([]models.Product, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// ProductLine snapshots a product into a catalog-scheme line source. The
// snapshot carries the stock and tax data the ledger validates against.
func (s *service) ProductLine(ctx context.Context, productID uuid.UUID) (ledger.LineSource, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		return ledger.LineSource{}, err
	}
	return productLineSource(product), nil
}

// OptionLine snapshots a product option into a sized-option line source.
// The option's own selling price wins; stock and tax come from the parent.
func (s *service) OptionLine(ctx context.Context, productID, optionID uuid.UUID) (ledger.LineSource, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		return ledger.LineSource{}, err
	}
	option, err := s.repo.FindOption(ctx, productID, optionID)
	if err != nil {
		return ledger.LineSource{}, err
	}

	src := productLineSource(product)
	src.Scheme = enums.KeySchemeSizedOption
	src.OptionID = option.ID.String()
	src.SizeLabel = option.Label
	src.SizeAnnotation = optionAnnotation(option)
	src.UnitSellingPrice = option.OptionSellingPrice
	return src, nil
}

func (s *service) ListProducts(ctx context.Context, search string, limit int) ([]models.Product, error) {
	return s.repo.ListActiveProducts(ctx, search, limit)
}

func productLineSource(product *models.Product) ledger.LineSource {
	productID := product.ID.String()
	src := ledger.LineSource{
		Scheme:           enums.KeySchemeCatalog,
		ItemID:           productID,
		ProductID:        &productID,
		Name:             product.Name,
		UOMAbbrev:        product.UOMAbbrev,
		UnitSellingPrice: product.UnitSellingPrice,
		CurrentStockQty:  product.CurrentStockQty,
	}
	if product.TaxRateID != nil {
		taxID := product.TaxRateID.String()
		src.TaxID = &taxID
		if product.TaxRate != nil {
			src.TaxRatePercentage = product.TaxRate.RatePercentage
		}
	}
	return src
}

// optionAnnotation renders the bracketed qty-by-unit hint shown under the
// size label, e.g. "16 oz". Options without a unit get no annotation.
func optionAnnotation(option *models.ProductOption) string {
	if option.OptionUOMAbbrev == "" {
		return ""
	}
	return fmt.Sprintf("%s %s", pricing.FormatQty(option.OptionQty), option.OptionUOMAbbrev)
}
