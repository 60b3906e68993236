package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
)

// Repository wires product and tax-rate persistence for the register.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindProduct loads a product with its tax rate and options.
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("TaxRate").
		Preload("Options").
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return &product, nil
}

// FindOption loads a single option of a product.
func (r *Repository) FindOption(ctx context.Context, productID, optionID uuid.UUID) (*models.ProductOption, error) {
	var option models.ProductOption
	err := r.db.WithContext(ctx).
		First(&option, "id = ? AND product_id = ?", optionID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product option not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product option")
	}
	return &option, nil
}

// ListActiveProducts returns active products for the register lookup,
// optionally filtered on name or SKU.
func (r *Repository) ListActiveProducts(ctx context.Context, search string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx).
		Preload("TaxRate").
		Preload("Options").
		Where("is_active = ?", true).
		Order("name ASC").
		Limit(limit)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", pattern, pattern)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return products, nil
}

// DecrementStock reduces a product's stock in place. Stock is allowed to go
// negative; the ledger already warned the operator at commit time.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("current_stock_qty", gorm.Expr("current_stock_qty - ?", qty))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "decrementing stock")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}
