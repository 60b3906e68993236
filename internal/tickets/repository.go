package tickets

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rcabrera/tillpoint-backend/pkg/db/models"
	"github.com/rcabrera/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
)

// Repository wires register-ticket persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateTicket inserts a ticket with its lines.
func (r *Repository) CreateTicket(ctx context.Context, ticket *models.RegisterTicket) error {
	if err := r.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating register ticket")
	}
	return nil
}

// FindTicket loads a ticket with its lines.
func (r *Repository) FindTicket(ctx context.Context, id uuid.UUID) (*models.RegisterTicket, error) {
	var ticket models.RegisterTicket
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&ticket, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "register ticket not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading register ticket")
	}
	return &ticket, nil
}

// ListOpen returns a register's open tickets, newest first.
func (r *Repository) ListOpen(ctx context.Context, registerID string) ([]models.RegisterTicket, error) {
	var tickets []models.RegisterTicket
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("register_id = ? AND status = ?", registerID, enums.TicketStatusOpen).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing open tickets")
	}
	return tickets, nil
}

// UpdateStatus moves a ticket through its lifecycle.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TicketStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.RegisterTicket{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "updating ticket status")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "register ticket not found")
	}
	return nil
}

// DeleteLine removes a single ticket line by its ref id.
func (r *Repository) DeleteLine(ctx context.Context, refID string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.RegisterTicketLine{}, "ref_id = ?", refID)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "deleting ticket line")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "ticket line not found")
	}
	return nil
}
