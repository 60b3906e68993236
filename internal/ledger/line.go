package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/rcabrera/tillpoint-backend/pkg/enums"
)

// LineSource is the provenance-tagged record an add path hands to the
// ledger. The loading service (catalog, orders, tickets) fills it from the
// originating row; missing numerics default to zero there.
type LineSource struct {
	Scheme   enums.KeyScheme `json:"scheme"`
	ItemID   string          `json:"item_id"`
	OptionID string          `json:"option_id,omitempty"`

	// ProductID carries the underlying product for provenances whose
	// ItemID is not the product itself (order and ticket lines).
	ProductID *string `json:"product_id,omitempty"`

	Name           string `json:"name"`
	UOMAbbrev      string `json:"uom_abbrev"`
	SizeLabel      string `json:"size_label,omitempty"`
	SizeAnnotation string `json:"size_annotation,omitempty"`

	UnitSellingPrice  decimal.Decimal `json:"unit_selling_price"`
	TaxID             *string         `json:"tax_id,omitempty"`
	TaxRatePercentage decimal.Decimal `json:"tax_rate_percentage"`

	CurrentStockQty   decimal.Decimal `json:"current_stock_qty"`
	OrderQty          decimal.Decimal `json:"order_qty"`
	FulfilledOrderQty decimal.Decimal `json:"fulfilled_order_qty"`
}

// LineItem is one entry in the in-progress sale. SaleQty is nil while the
// operator has cleared the input; the line stays in the map until finalize
// strips it.
type LineItem struct {
	Key    string          `json:"key"`
	Scheme enums.KeyScheme `json:"scheme"`
	Seq    int             `json:"seq"`

	ItemID    string  `json:"item_id"`
	OptionID  string  `json:"option_id,omitempty"`
	ProductID *string `json:"product_id,omitempty"`

	Name           string `json:"name"`
	UOMAbbrev      string `json:"uom_abbrev"`
	SizeLabel      string `json:"size_label,omitempty"`
	SizeAnnotation string `json:"size_annotation,omitempty"`

	UnitSellingPrice  decimal.Decimal  `json:"unit_selling_price"`
	SaleQty           *decimal.Decimal `json:"sale_qty"`
	SaleSubtotal      decimal.Decimal  `json:"sale_subtotal"`
	TaxID             *string          `json:"tax_id,omitempty"`
	TaxRatePercentage decimal.Decimal  `json:"tax_rate_percentage"`

	CurrentStockQty   decimal.Decimal `json:"current_stock_qty"`
	OrderQty          decimal.Decimal `json:"order_qty"`
	FulfilledOrderQty decimal.Decimal `json:"fulfilled_order_qty"`
}

// Taxable reports whether the line carries a tax id.
func (l *LineItem) Taxable() bool {
	return l != nil && l.TaxID != nil
}

// QtyOrZero returns the sale quantity, treating blank as zero.
func (l *LineItem) QtyOrZero() decimal.Decimal {
	if l == nil || l.SaleQty == nil {
		return decimal.Zero
	}
	return *l.SaleQty
}

// HasQty reports whether the line has a non-zero, non-blank quantity.
func (l *LineItem) HasQty() bool {
	return l != nil && l.SaleQty != nil && !l.SaleQty.IsZero()
}

// Source rebuilds the line source the item was created from. Used to
// re-focus an existing line without reloading its originating row.
func (l *LineItem) Source() LineSource {
	return LineSource{
		Scheme:            l.Scheme,
		ItemID:            l.ItemID,
		OptionID:          l.OptionID,
		ProductID:         l.ProductID,
		Name:              l.Name,
		UOMAbbrev:         l.UOMAbbrev,
		SizeLabel:         l.SizeLabel,
		SizeAnnotation:    l.SizeAnnotation,
		UnitSellingPrice:  l.UnitSellingPrice,
		TaxID:             l.TaxID,
		TaxRatePercentage: l.TaxRatePercentage,
		CurrentStockQty:   l.CurrentStockQty,
		OrderQty:          l.OrderQty,
		FulfilledOrderQty: l.FulfilledOrderQty,
	}
}

func newLineItem(src LineSource, seq int) *LineItem {
	return &LineItem{
		Key:               LineKey(src),
		Scheme:            src.Scheme,
		Seq:               seq,
		ItemID:            src.ItemID,
		OptionID:          src.OptionID,
		ProductID:         src.ProductID,
		Name:              src.Name,
		UOMAbbrev:         src.UOMAbbrev,
		SizeLabel:         src.SizeLabel,
		SizeAnnotation:    src.SizeAnnotation,
		UnitSellingPrice:  src.UnitSellingPrice,
		TaxID:             src.TaxID,
		TaxRatePercentage: src.TaxRatePercentage,
		CurrentStockQty:   src.CurrentStockQty,
		OrderQty:          src.OrderQty,
		FulfilledOrderQty: src.FulfilledOrderQty,
	}
}
