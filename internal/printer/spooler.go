package printer

import (
	"context"

	"github.com/rcabrera/tillpoint-backend/pkg/logger"
	"github.com/rcabrera/tillpoint-backend/pkg/metrics"
)

// Spooler hands a rendered receipt payload to a printer transport. The
// payload already contains its ESC/POS control sequences; the transport
// transmits it verbatim.
type Spooler interface {
	Print(ctx context.Context, registerID, payload string) error
}

// LogSpooler writes the payload to the log instead of a printer. Used in
// development and as a fallback when no printer is configured.
type LogSpooler struct {
	logg  *logger.Logger
	sales *metrics.SaleMetrics
}

func NewLogSpooler(logg *logger.Logger, sales *metrics.SaleMetrics) *LogSpooler {
	return &LogSpooler{logg: logg, sales: sales}
}

func (s *LogSpooler) Print(ctx context.Context, registerID, payload string) error {
	if s.logg != nil {
		ctx = s.logg.WithRegisterID(ctx, registerID)
		ctx = s.logg.WithField(ctx, "payload_bytes", len(payload))
		s.logg.Info(ctx, "receipt spooled to log")
	}
	s.sales.IncReceipt(registerID, "logged")
	return nil
}
