package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rcabrera/tillpoint-backend/api/middleware"
	"github.com/rcabrera/tillpoint-backend/api/responses"
	"github.com/rcabrera/tillpoint-backend/api/validators"
	"github.com/rcabrera/tillpoint-backend/internal/catalog"
	"github.com/rcabrera/tillpoint-backend/internal/ledger"
	"github.com/rcabrera/tillpoint-backend/internal/orders"
	"github.com/rcabrera/tillpoint-backend/pkg/config"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
)

type sessionLineResponse struct {
	Key              string           `json:"key"`
	Scheme           string           `json:"scheme"`
	Name             string           `json:"name"`
	UOMAbbrev        string           `json:"uom_abbrev"`
	SizeLabel        string           `json:"size_label,omitempty"`
	SizeAnnotation   string           `json:"size_annotation,omitempty"`
	UnitSellingPrice decimal.Decimal  `json:"unit_selling_price"`
	SaleQty          *decimal.Decimal `json:"sale_qty"`
	SaleSubtotal     decimal.Decimal  `json:"sale_subtotal"`
	Taxable          bool             `json:"taxable"`
	Error            string           `json:"error,omitempty"`
}

type sessionStateResponse struct {
	FocusedKey string                `json:"focused_key,omitempty"`
	Items      []sessionLineResponse `json:"items"`
	Totals     ledger.SaleTotals     `json:"totals"`
	HasErrors  bool                  `json:"has_errors"`
}

func newSessionStateResponse(s *ledger.Session) sessionStateResponse {
	resp := sessionStateResponse{
		Items:     []sessionLineResponse{},
		Totals:    s.Totals(),
		HasErrors: s.HasErrors(),
	}
	if focused := s.Focused(); focused != nil {
		resp.FocusedKey = ledger.LineKey(*focused)
	}
	for _, item := range s.OrderedItems() {
		resp.Items = append(resp.Items, sessionLineResponse{
			Key:              item.Key,
			Scheme:           item.Scheme.String(),
			Name:             item.Name,
			UOMAbbrev:        item.UOMAbbrev,
			SizeLabel:        item.SizeLabel,
			SizeAnnotation:   item.SizeAnnotation,
			UnitSellingPrice: item.UnitSellingPrice,
			SaleQty:          item.SaleQty,
			SaleSubtotal:     item.SaleSubtotal,
			Taxable:          item.Taxable(),
			Error:            s.Errors()[item.Key],
		})
	}
	return resp
}

func ceilingOpts(cfg config.LedgerConfig, stock, order *bool) ledger.CeilingOpts {
	opts := ledger.CeilingOpts{
		EnableStockCeiling: cfg.EnforceStockByDflt,
		EnableOrderCeiling: cfg.EnforceOrderByDflt,
	}
	if stock != nil {
		opts.EnableStockCeiling = *stock
	}
	if order != nil {
		opts.EnableOrderCeiling = *order
	}
	return opts
}

func parseQty(raw *string) (*decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quantity")
	}
	return &parsed, nil
}

func requireRegisterID(r *http.Request) (string, error) {
	registerID := middleware.RegisterIDFromContext(r.Context())
	if registerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "register context missing")
	}
	return registerID, nil
}

// SessionState returns the current ledger view for the register.
func SessionState(mgr *ledger.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var resp sessionStateResponse
		err = mgr.View(r.Context(), registerID, func(s *ledger.Session) error {
			resp = newSessionStateResponse(s)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

type addItemRequest struct {
	ProductID          uuid.UUID  `json:"product_id" validate:"required"`
	OptionID           *uuid.UUID `json:"option_id"`
	Qty                *string    `json:"qty"`
	AutoIncrease       bool       `json:"auto_increase"`
	EnableStockCeiling *bool      `json:"enable_stock_ceiling"`
	EnableOrderCeiling *bool      `json:"enable_order_ceiling"`
}

// SessionAddItem adds a catalog product (or one of its sized options) to
// the ledger and focuses the resulting line.
func SessionAddItem(mgr *ledger.Manager, catalogSvc catalog.Service, cfg config.LedgerConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		qty, err := parseQty(payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var src ledger.LineSource
		if payload.OptionID != nil {
			src, err = catalogSvc.OptionLine(r.Context(), payload.ProductID, *payload.OptionID)
		} else {
			src, err = catalogSvc.ProductLine(r.Context(), payload.ProductID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		opts := ceilingOpts(cfg, payload.EnableStockCeiling, payload.EnableOrderCeiling)
		var resp sessionStateResponse
		err = mgr.Mutate(r.Context(), registerID, func(s *ledger.Session) error {
			var upsertErr error
			if payload.OptionID != nil {
				upsertErr = s.UpsertSizedOption(src, qty, payload.AutoIncrease, opts)
			} else {
				upsertErr = s.UpsertCatalogItem(src, qty, payload.AutoIncrease, opts)
			}
			if upsertErr != nil {
				return upsertErr
			}
			s.SetFocused(&src)
			resp = newSessionStateResponse(s)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

type addOrderLineRequest struct {
	OrderLineID        uuid.UUID `json:"order_line_id" validate:"required"`
	Qty                *string   `json:"qty"`
	AutoIncrease       bool      `json:"auto_increase"`
	EnableStockCeiling *bool     `json:"enable_stock_ceiling"`
	EnableOrderCeiling *bool     `json:"enable_order_ceiling"`
}

// SessionAddOrderLine pulls a sales-order line into the ledger.
func SessionAddOrderLine(mgr *ledger.Manager, ordersSvc orders.Service, cfg config.LedgerConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addOrderLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		qty, err := parseQty(payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		src, err := ordersSvc.OrderLine(r.Context(), payload.OrderLineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		opts := ceilingOpts(cfg, payload.EnableStockCeiling, payload.EnableOrderCeiling)
		var resp sessionStateResponse
		err = mgr.Mutate(r.Context(), registerID, func(s *ledger.Session) error {
			if err := s.UpsertOrderLine(src, qty, payload.AutoIncrease, opts); err != nil {
				return err
			}
			s.SetFocused(&src)
			resp = newSessionStateResponse(s)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

type focusRequest struct {
	LineKey string `json:"line_key" validate:"required"`
}

// SessionFocus points the quantity controls at an existing line.
func SessionFocus(mgr *ledger.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload focusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var resp sessionStateResponse
		err = mgr.Mutate(r.Context(), registerID, func(s *ledger.Session) error {
			if !s.FocusLine(payload.LineKey) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
			}
			resp = newSessionStateResponse(s)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

type stepQtyRequest struct {
	EnableStockCeiling *bool `json:"enable_stock_ceiling"`
	EnableOrderCeiling *bool `json:"enable_order_ceiling"`
}

// SessionIncreaseQty steps the focused line up by one.
func SessionIncreaseQty(mgr *ledger.Manager, cfg config.LedgerConfig, logg *logger.Logger) http.HandlerFunc {
	return stepQtyHandler(mgr, cfg, logg, func(s *ledger.Session, opts ledger.CeilingOpts) {
		s.IncreaseQty(opts)
	})
}

// SessionDecreaseQty steps the focused line down by one.
func SessionDecreaseQty(mgr *ledger.Manager, cfg config.LedgerConfig, logg *logger.Logger) http.HandlerFunc {
	return stepQtyHandler(mgr, cfg, logg, func(s *ledger.Session, opts ledger.CeilingOpts) {
		s.DecreaseQty(opts)
	})
}

func stepQtyHandler(mgr *ledger.Manager, cfg config.LedgerConfig, logg *logger.Logger, step func(*ledger.Session, ledger.CeilingOpts)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stepQtyRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		opts := ceilingOpts(cfg, payload.EnableStockCeiling, payload.EnableOrderCeiling)
		var resp sessionStateResponse
		err = mgr.Mutate(r.Context(), registerID, func(s *ledger.Session) error {
			step(s, opts)
			resp = newSessionStateResponse(s)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

type updateQtyRequest struct {
	LineKey            string `json:"line_key" validate:"required"`
	Value              string `json:"value"`
	EnableStockCeiling *bool  `json:"enable_stock_ceiling"`
	EnableOrderCeiling *bool  `json:"enable_order_ceiling"`
}

// SessionUpdateQty replaces the focused line's quantity. Updates against a
// line the operator has navigated away from are silently ignored.
func SessionUpdateQty(mgr *ledger.Manager, cfg config.LedgerConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQtyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		opts := ceilingOpts(cfg, payload.EnableStockCeiling, payload.EnableOrderCeiling)
		var resp sessionStateResponse
		err = mgr.Mutate(r.Context(), registerID, func(s *ledger.Session) error {
			if err := s.UpdateQty(payload.LineKey, payload.Value, opts); err != nil {
				return err
			}
			resp = newSessionStateResponse(s)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

type removeLineRequest struct {
	LineKey string `json:"line_key" validate:"required"`
}

// SessionRemoveTicketLine deletes a ticket-provenance line from the ledger.
func SessionRemoveTicketLine(mgr *ledger.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload removeLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var resp sessionStateResponse
		err = mgr.Mutate(r.Context(), registerID, func(s *ledger.Session) error {
			item, ok := s.Items()[payload.LineKey]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
			}
			if err := s.RemoveTicketLine(item.Source()); err != nil {
				return err
			}
			resp = newSessionStateResponse(s)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// SessionReview finalizes the ledger for the checkout screen: zero and
// blank lines are stripped and the focus is cleared.
func SessionReview(mgr *ledger.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var resp sessionStateResponse
		err = mgr.Mutate(r.Context(), registerID, func(s *ledger.Session) error {
			s.FinalizeForReview()
			resp = newSessionStateResponse(s)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// SessionReset abandons the in-progress sale.
func SessionReset(mgr *ledger.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := mgr.Discard(r.Context(), registerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reset"})
	}
}
