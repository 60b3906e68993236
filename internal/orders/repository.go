package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
)

// Repository wires sales-order persistence for the register.
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

// FindOrder loads an order with its lines.
func (r *Repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.SalesOrder, error) {
	var order models.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sales order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sales order")
	}
	return &order, nil
}

// FindLine loads a single order line.
func (r *Repository) FindLine(ctx context.Context, lineID uuid.UUID) (*models.SalesOrderLine, error) {
	var line models.SalesOrderLine
	err := r.db.WithContext(ctx).First(&line, "id = ?", lineID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sales order line not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sales order line")
	}
	return &line, nil
}

// ListOutstanding returns orders that still have unfulfilled quantity.
func (r *Repository) ListOutstanding(ctx context.Context, limit int) ([]models.SalesOrder, error) {
	if limit <= 0 {
		limit = 50
	}
	var orders []models.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id IN (?)", r.db.
			Model(&models.SalesOrderLine{}).
			Select("order_id").
			Where("fulfilled_order_qty < order_qty")).
		Order("order_number ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing outstanding orders")
	}
	return orders, nil
}

// BumpFulfilled adds the sold quantity to a line's fulfilled total.
func (r *Repository) BumpFulfilled(ctx context.Context, lineID uuid.UUID, qty decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.SalesOrderLine{}).
		Where("id = ?", lineID).
		UpdateColumn("fulfilled_order_qty", gorm.Expr("fulfilled_order_qty + ?", qty))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "bumping fulfilled qty")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "sales order line not found")
	}
	return nil
}
