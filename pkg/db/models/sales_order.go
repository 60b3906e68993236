package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrder is a customer order whose lines can be pulled into a register
// session for fulfillment.
type SalesOrder struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber  int64            `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerName string           `gorm:"column:customer_name;not null;default:''"`
	Lines        []SalesOrderLine `gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// SalesOrderLine snapshots a product at order time. FulfilledOrderQty grows
// as register sales draw it down; the remainder is the order ceiling.
type SalesOrderLine struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID               uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID             uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name                  string          `gorm:"column:name;not null"`
	UOMAbbrev             string          `gorm:"column:uom_abbrev;not null;default:'pc'"`
	OrderUnitSellingPrice decimal.Decimal `gorm:"column:order_unit_selling_price;type:numeric(14,4);not null"`
	OrderQty              decimal.Decimal `gorm:"column:order_qty;type:numeric(14,4);not null"`
	FulfilledOrderQty     decimal.Decimal `gorm:"column:fulfilled_order_qty;type:numeric(14,4);not null;default:0"`
	TaxRateID             *uuid.UUID      `gorm:"column:tax_rate_id;type:uuid"`
	TaxRatePercentage     decimal.Decimal `gorm:"column:tax_rate_percentage;type:numeric(7,4);not null;default:0"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
