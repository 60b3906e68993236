package tickets

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rcabrera/tillpoint-backend/internal/ledger"
	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	"github.com/rcabrera/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
)

// Service parks in-progress sales as drafts and re-imports them later.
type Service interface {
	SaveDraft(ctx context.Context, session *ledger.Session, registerID, label string) (*models.RegisterTicket, error)
	ImportDraft(ctx context.Context, session *ledger.Session, ticketID uuid.UUID, opts ledger.CeilingOpts) error
	DeleteLine(ctx context.Context, refID string) error
	ListOpen(ctx context.Context, registerID string) ([]models.RegisterTicket, error)
	Discard(ctx context.Context, ticketID uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService constructs a tickets service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tickets repository required")
	}
	return &service{repo: repo}, nil
}

// SaveDraft snapshots the ledger's non-blank lines into a new open ticket.
// Each line gets a fresh ref id; that ref id becomes the ledger key when
// the draft is re-imported.
func (s *service) SaveDraft(ctx context.Context, session *ledger.Session, registerID, label string) (*models.RegisterTicket, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session is required")
	}

	review := session.FinalizeForReview()
	if len(review.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to park")
	}

	ticket := &models.RegisterTicket{
		ID:         uuid.New(),
		RegisterID: registerID,
		Label:      label,
		Status:     enums.TicketStatusOpen,
	}
	for _, item := range review.Items {
		line := models.RegisterTicketLine{
			RefID:             uuid.NewString(),
			TicketID:          ticket.ID,
			Name:              item.Name,
			UOMAbbrev:         item.UOMAbbrev,
			SizeLabel:         item.SizeLabel,
			UnitSellingPrice:  item.UnitSellingPrice,
			SaleQty:           item.QtyOrZero(),
			CurrentStockQty:   item.CurrentStockQty,
			TaxRatePercentage: item.TaxRatePercentage,
		}
		if item.ProductID != nil {
			if productID, err := uuid.Parse(*item.ProductID); err == nil {
				line.ProductID = &productID
			}
		}
		if item.TaxID != nil {
			if taxID, err := uuid.Parse(*item.TaxID); err == nil {
				line.TaxRateID = &taxID
			}
		}
		ticket.Lines = append(ticket.Lines, line)
	}

	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ImportDraft pushes a ticket's lines into the session under ticket-line
// provenance and marks the ticket imported. The saved sale quantity is
// re-validated against the ceilings as each line lands.
func (s *service) ImportDraft(ctx context.Context, session *ledger.Session, ticketID uuid.UUID, opts ledger.CeilingOpts) error {
	if session == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session is required")
	}

	ticket, err := s.repo.FindTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status != enums.TicketStatusOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "ticket is no longer open")
	}

	for _, line := range ticket.Lines {
		src := ledger.LineSource{
			Scheme:            enums.KeySchemeTicketLine,
			ItemID:            line.RefID,
			Name:              line.Name,
			UOMAbbrev:         line.UOMAbbrev,
			SizeLabel:         line.SizeLabel,
			UnitSellingPrice:  line.UnitSellingPrice,
			CurrentStockQty:   line.CurrentStockQty,
			TaxRatePercentage: line.TaxRatePercentage,
		}
		if line.ProductID != nil {
			productID := line.ProductID.String()
			src.ProductID = &productID
		}
		if line.TaxRateID != nil {
			taxID := line.TaxRateID.String()
			src.TaxID = &taxID
		}
		qty := line.SaleQty
		if err := session.UpsertTicketLine(src, &qty, false, opts); err != nil {
			return err
		}
	}

	return s.repo.UpdateStatus(ctx, ticketID, enums.TicketStatusImported)
}

func (s *service) DeleteLine(ctx context.Context, refID string) error {
	return s.repo.DeleteLine(ctx, refID)
}

func (s *service) ListOpen(ctx context.Context, registerID string) ([]models.RegisterTicket, error) {
	return s.repo.ListOpen(ctx, registerID)
}

// Discard marks a ticket discarded without touching any session.
func (s *service) Discard(ctx context.Context, ticketID uuid.UUID) error {
	return s.repo.UpdateStatus(ctx, ticketID, enums.TicketStatusDiscarded)
}
