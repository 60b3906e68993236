package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. Quantities and prices are numeric
// columns; fractional stock is allowed for weighed goods.
type Product struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU              string          `gorm:"column:sku;not null;uniqueIndex"`
	Name             string          `gorm:"column:name;not null"`
	UOMAbbrev        string          `gorm:"column:uom_abbrev;not null;default:'pc'"`
	UnitSellingPrice decimal.Decimal `gorm:"column:unit_selling_price;type:numeric(14,4);not null"`
	CurrentStockQty  decimal.Decimal `gorm:"column:current_stock_qty;type:numeric(14,4);not null;default:0"`
	TaxRateID        *uuid.UUID      `gorm:"column:tax_rate_id;type:uuid"`
	TaxRate          *TaxRate        `gorm:"foreignKey:TaxRateID"`
	// No gorm-side default: a default tag makes gorm skip the zero value
	// on insert, turning IsActive=false into true. The column default
	// lives in the migration.
	IsActive  bool            `gorm:"column:is_active;not null"`
	Options   []ProductOption `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductOption is a size/modifier variant with its own selling price.
type ProductOption struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Label              string          `gorm:"column:label;not null"`
	OptionQty          decimal.Decimal `gorm:"column:option_qty;type:numeric(14,4);not null;default:1"`
	OptionUOMAbbrev    string          `gorm:"column:option_uom_abbrev;not null;default:''"`
	OptionSellingPrice decimal.Decimal `gorm:"column:option_selling_price;type:numeric(14,4);not null"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
