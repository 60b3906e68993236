package controllers

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rcabrera/tillpoint-backend/api/responses"
	"github.com/rcabrera/tillpoint-backend/internal/catalog"
	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
)

type productOptionResponse struct {
	ID                 string          `json:"id"`
	Label              string          `json:"label"`
	OptionQty          decimal.Decimal `json:"option_qty"`
	OptionUOMAbbrev    string          `json:"option_uom_abbrev,omitempty"`
	OptionSellingPrice decimal.Decimal `json:"option_selling_price"`
}

type productResponse struct {
	ID                string                  `json:"id"`
	SKU               string                  `json:"sku"`
	Name              string                  `json:"name"`
	UOMAbbrev         string                  `json:"uom_abbrev"`
	UnitSellingPrice  decimal.Decimal         `json:"unit_selling_price"`
	CurrentStockQty   decimal.Decimal         `json:"current_stock_qty"`
	TaxRateID         *string                 `json:"tax_rate_id,omitempty"`
	TaxRatePercentage *decimal.Decimal        `json:"tax_rate_percentage,omitempty"`
	Options           []productOptionResponse `json:"options"`
}

func newProductResponse(product models.Product) productResponse {
	resp := productResponse{
		ID:               product.ID.String(),
		SKU:              product.SKU,
		Name:             product.Name,
		UOMAbbrev:        product.UOMAbbrev,
		UnitSellingPrice: product.UnitSellingPrice,
		CurrentStockQty:  product.CurrentStockQty,
		Options:          []productOptionResponse{},
	}
	if product.TaxRateID != nil {
		taxID := product.TaxRateID.String()
		resp.TaxRateID = &taxID
		if product.TaxRate != nil {
			rate := product.TaxRate.RatePercentage
			resp.TaxRatePercentage = &rate
		}
	}
	for _, option := range product.Options {
		resp.Options = append(resp.Options, productOptionResponse{
			ID:                 option.ID.String(),
			Label:              option.Label,
			OptionQty:          option.OptionQty,
			OptionUOMAbbrev:    option.OptionUOMAbbrev,
			OptionSellingPrice: option.OptionSellingPrice,
		})
	}
	return resp
}

// CatalogList returns active products for the register lookup screen.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				limit = parsed
			}
		}

		products, err := svc.ListProducts(r.Context(), r.URL.Query().Get("search"), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]productResponse, 0, len(products))
		for _, product := range products {
			out = append(out, newProductResponse(product))
		}
		responses.WriteSuccess(w, out)
	}
}
