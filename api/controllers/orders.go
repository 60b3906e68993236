package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rcabrera/tillpoint-backend/api/responses"
	"github.com/rcabrera/tillpoint-backend/internal/orders"
	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
)

type orderLineResponse struct {
	ID                    string          `json:"id"`
	ProductID             string          `json:"product_id"`
	Name                  string          `json:"name"`
	UOMAbbrev             string          `json:"uom_abbrev"`
	OrderUnitSellingPrice decimal.Decimal `json:"order_unit_selling_price"`
	OrderQty              decimal.Decimal `json:"order_qty"`
	FulfilledOrderQty     decimal.Decimal `json:"fulfilled_order_qty"`
	RemainingQty          decimal.Decimal `json:"remaining_qty"`
}

type orderResponse struct {
	ID           string              `json:"id"`
	OrderNumber  int64               `json:"order_number"`
	CustomerName string              `json:"customer_name,omitempty"`
	Lines        []orderLineResponse `json:"lines"`
}

func newOrderResponse(order models.SalesOrder) orderResponse {
	resp := orderResponse{
		ID:           order.ID.String(),
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		Lines:        []orderLineResponse{},
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ID:                    line.ID.String(),
			ProductID:             line.ProductID.String(),
			Name:                  line.Name,
			UOMAbbrev:             line.UOMAbbrev,
			OrderUnitSellingPrice: line.OrderUnitSellingPrice,
			OrderQty:              line.OrderQty,
			FulfilledOrderQty:     line.FulfilledOrderQty,
			RemainingQty:          line.OrderQty.Sub(line.FulfilledOrderQty),
		})
	}
	return resp
}

// OrdersOutstanding lists orders that still have unfulfilled quantity.
func OrdersOutstanding(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.ListOutstanding(r.Context(), 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(result))
		for _, order := range result {
			out = append(out, newOrderResponse(order))
		}
		responses.WriteSuccess(w, out)
	}
}

// OrderDetail returns one order with its lines.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}
