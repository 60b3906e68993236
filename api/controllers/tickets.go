package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rcabrera/tillpoint-backend/api/responses"
	"github.com/rcabrera/tillpoint-backend/api/validators"
	"github.com/rcabrera/tillpoint-backend/internal/ledger"
	"github.com/rcabrera/tillpoint-backend/internal/tickets"
	"github.com/rcabrera/tillpoint-backend/pkg/config"
	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
)

type ticketLineResponse struct {
	RefID            string          `json:"ref_id"`
	Name             string          `json:"name"`
	UOMAbbrev        string          `json:"uom_abbrev"`
	SizeLabel        string          `json:"size_label,omitempty"`
	UnitSellingPrice decimal.Decimal `json:"unit_selling_price"`
	SaleQty          decimal.Decimal `json:"sale_qty"`
}

type ticketResponse struct {
	ID     string               `json:"id"`
	Label  string               `json:"label,omitempty"`
	Status string               `json:"status"`
	Lines  []ticketLineResponse `json:"lines"`
}

func newTicketResponse(ticket models.RegisterTicket) ticketResponse {
	resp := ticketResponse{
		ID:     ticket.ID.String(),
		Label:  ticket.Label,
		Status: ticket.Status.String(),
		Lines:  []ticketLineResponse{},
	}
	for _, line := range ticket.Lines {
		resp.Lines = append(resp.Lines, ticketLineResponse{
			RefID:            line.RefID,
			Name:             line.Name,
			UOMAbbrev:        line.UOMAbbrev,
			SizeLabel:        line.SizeLabel,
			UnitSellingPrice: line.UnitSellingPrice,
			SaleQty:          line.SaleQty,
		})
	}
	return resp
}

type saveTicketRequest struct {
	Label string `json:"label" validate:"max=120"`
}

// TicketSave parks the current ledger as a draft ticket and clears the
// session.
func TicketSave(mgr *ledger.Manager, svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload saveTicketRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		var ticket *models.RegisterTicket
		err = mgr.Mutate(r.Context(), registerID, func(s *ledger.Session) error {
			saved, saveErr := svc.SaveDraft(r.Context(), s, registerID, payload.Label)
			if saveErr != nil {
				return saveErr
			}
			ticket = saved
			s.Reset()
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newTicketResponse(*ticket))
	}
}

// TicketList returns the register's open tickets.
func TicketList(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		open, err := svc.ListOpen(r.Context(), registerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]ticketResponse, 0, len(open))
		for _, ticket := range open {
			out = append(out, newTicketResponse(ticket))
		}
		responses.WriteSuccess(w, out)
	}
}

type importTicketRequest struct {
	EnableStockCeiling *bool `json:"enable_stock_ceiling"`
	EnableOrderCeiling *bool `json:"enable_order_ceiling"`
}

// TicketImport re-imports a parked draft into the current session.
func TicketImport(mgr *ledger.Manager, svc tickets.Service, cfg config.LedgerConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticketID, err := uuid.Parse(chi.URLParam(r, "ticketID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ticket id"))
			return
		}

		var payload importTicketRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		opts := ceilingOpts(cfg, payload.EnableStockCeiling, payload.EnableOrderCeiling)
		var resp sessionStateResponse
		err = mgr.Mutate(r.Context(), registerID, func(s *ledger.Session) error {
			if err := svc.ImportDraft(r.Context(), s, ticketID, opts); err != nil {
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

// TicketDeleteLine removes a single line from a parked draft.
func TicketDeleteLine(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refID := chi.URLParam(r, "refID")
		if refID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ref id is required"))
			return
		}
		if err := svc.DeleteLine(r.Context(), refID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// TicketDiscard abandons a parked draft.
func TicketDiscard(svc tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, err := uuid.Parse(chi.URLParam(r, "ticketID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ticket id"))
			return
		}
		if err := svc.Discard(r.Context(), ticketID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "discarded"})
	}
}
