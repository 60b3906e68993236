package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcabrera/tillpoint-backend/api/responses"
	checkoutsvc "github.com/rcabrera/tillpoint-backend/internal/checkout"
	"github.com/rcabrera/tillpoint-backend/internal/ledger"
	"github.com/rcabrera/tillpoint-backend/internal/printer"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
)

type checkoutResponse struct {
	InvoiceID        string          `json:"invoice_id"`
	InvoiceNumber    int64           `json:"invoice_number"`
	IssuedAt         time.Time       `json:"issued_at"`
	GrandTotalAmount decimal.Decimal `json:"grand_total_amount"`
	TotalTaxAmount   decimal.Decimal `json:"total_tax_amount"`
	ReceiptText      string          `json:"receipt_text"`
}

// CheckoutComplete finalizes the in-progress sale and spools the receipt.
// A spool failure is reported in the log only; the sale is already
// committed and the receipt text is returned for a reprint.
func CheckoutComplete(mgr *ledger.Manager, svc checkoutsvc.Service, spooler printer.Spooler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registerID, err := requireRegisterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var result *checkoutsvc.Result
		err = mgr.Mutate(r.Context(), registerID, func(s *ledger.Session) error {
			completed, completeErr := svc.Complete(r.Context(), s, registerID)
			if completeErr != nil {
				return completeErr
			}
			result = completed
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if spooler != nil && result.ReceiptText != "" {
			if spoolErr := spooler.Print(r.Context(), registerID, result.ReceiptText); spoolErr != nil && logg != nil {
				logg.Error(r.Context(), "spooling receipt", spoolErr)
			}
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			InvoiceID:        result.Invoice.ID.String(),
			InvoiceNumber:    result.Invoice.InvoiceNumber,
			IssuedAt:         result.Invoice.IssuedAt,
			GrandTotalAmount: result.Invoice.GrandTotalAmount,
			TotalTaxAmount:   result.Invoice.TotalTaxAmount,
			ReceiptText:      result.ReceiptText,
		})
	}
}
