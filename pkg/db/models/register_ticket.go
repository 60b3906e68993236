package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rcabrera/tillpoint-backend/pkg/enums"
)

// RegisterTicket is a parked draft of an in-progress sale that can be
// re-imported into a later register session.
type RegisterTicket struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegisterID string               `gorm:"column:register_id;not null;index"`
	Label      string               `gorm:"column:label;not null;default:''"`
	Status     enums.TicketStatus   `gorm:"column:status;not null;default:'open'"`
	Lines      []RegisterTicketLine `gorm:"foreignKey:TicketID"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// RegisterTicketLine keeps the ref id it was assigned when the draft was
// parked; that ref id is the ledger key on re-import.
type RegisterTicketLine struct {
	RefID             string          `gorm:"column:ref_id;primaryKey"`
	TicketID          uuid.UUID       `gorm:"column:ticket_id;type:uuid;not null;index"`
	ProductID         *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	Name              string          `gorm:"column:name;not null"`
	UOMAbbrev         string          `gorm:"column:uom_abbrev;not null;default:'pc'"`
	SizeLabel         string          `gorm:"column:size_label;not null;default:''"`
	UnitSellingPrice  decimal.Decimal `gorm:"column:unit_selling_price;type:numeric(14,4);not null"`
	SaleQty           decimal.Decimal `gorm:"column:sale_qty;type:numeric(14,4);not null"`
	CurrentStockQty   decimal.Decimal `gorm:"column:current_stock_qty;type:numeric(14,4);not null;default:0"`
	TaxRateID         *uuid.UUID      `gorm:"column:tax_rate_id;type:uuid"`
	TaxRatePercentage decimal.Decimal `gorm:"column:tax_rate_percentage;type:numeric(7,4);not null;default:0"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}
