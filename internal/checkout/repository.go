package checkout

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
)

// Repository wires invoice and merchant-profile persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// NextInvoiceNumber returns the next sequential invoice number. Callers run
// this inside the checkout transaction so concurrent registers cannot take
// the same number.
func (r *Repository) NextInvoiceNumber(ctx context.Context) (int64, error) {
	var current int64
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("COALESCE(MAX(invoice_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading invoice sequence")
	}
	return current + 1, nil
}

// CreateInvoice inserts the invoice with its items.
func (r *Repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating invoice")
	}
	return nil
}

// FindMerchantProfile returns the single merchant profile, or nil when the
// install has not configured one. Receipts then print without a header.
func (r *Repository) FindMerchantProfile(ctx context.Context) (*models.MerchantProfile, error) {
	var profile models.MerchantProfile
	err := r.db.WithContext(ctx).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading merchant profile")
	}
	return &profile, nil
}
