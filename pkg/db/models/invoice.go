package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rcabrera/tillpoint-backend/pkg/enums"
)

// Invoice is a finalized sale with its tax-split totals frozen at checkout.
type Invoice struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber         int64           `gorm:"column:invoice_number;not null;uniqueIndex"`
	RegisterID            string          `gorm:"column:register_id;not null;index"`
	GrandTotalAmount      decimal.Decimal `gorm:"column:grand_total_amount;type:numeric(14,4);not null"`
	TotalTaxableAmount    decimal.Decimal `gorm:"column:total_taxable_amount;type:numeric(14,4);not null;default:0"`
	TotalTaxableNetAmount decimal.Decimal `gorm:"column:total_taxable_net_amount;type:numeric(14,4);not null;default:0"`
	TotalTaxExemptAmount  decimal.Decimal `gorm:"column:total_tax_exempt_amount;type:numeric(14,4);not null;default:0"`
	TotalTaxAmount        decimal.Decimal `gorm:"column:total_tax_amount;type:numeric(14,4);not null;default:0"`
	IssuedAt              time.Time       `gorm:"column:issued_at;not null"`
	Items                 []InvoiceItem   `gorm:"foreignKey:InvoiceID"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// InvoiceItem snapshots one finalized ledger line.
type InvoiceItem struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID         uuid.UUID       `gorm:"column:invoice_id;type:uuid;not null;index"`
	LineKey           string          `gorm:"column:line_key;not null"`
	KeyScheme         enums.KeyScheme `gorm:"column:key_scheme;not null"`
	ProductID         *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	OrderLineID       *uuid.UUID      `gorm:"column:order_line_id;type:uuid"`
	Name              string          `gorm:"column:name;not null"`
	UOMAbbrev         string          `gorm:"column:uom_abbrev;not null;default:'pc'"`
	SizeLabel         string          `gorm:"column:size_label;not null;default:''"`
	UnitSellingPrice  decimal.Decimal `gorm:"column:unit_selling_price;type:numeric(14,4);not null"`
	SaleQty           decimal.Decimal `gorm:"column:sale_qty;type:numeric(14,4);not null"`
	SaleSubtotal      decimal.Decimal `gorm:"column:sale_subtotal;type:numeric(14,4);not null"`
	TaxRateID         *uuid.UUID      `gorm:"column:tax_rate_id;type:uuid"`
	TaxRatePercentage decimal.Decimal `gorm:"column:tax_rate_percentage;type:numeric(7,4);not null;default:0"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}
