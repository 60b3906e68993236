package printer

import (
	"context"
	"fmt"
	"net"
	"time"

	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
	"github.com/rcabrera/tillpoint-backend/pkg/metrics"
)

// feedAndCut advances the paper and triggers a partial cut after the payload.
const feedAndCut = "\n\n\n\x1d\x56\x41\x10"

// TCPSpooler transmits payloads to a network ESC/POS printer, one
// connection per receipt. Thermal printers handle raw TCP on port 9100.
type TCPSpooler struct {
	address     string
	dialTimeout time.Duration
	logg        *logger.Logger
	sales       *metrics.SaleMetrics
}

func NewTCPSpooler(address string, dialTimeout time.Duration, logg *logger.Logger, sales *metrics.SaleMetrics) (*TCPSpooler, error) {
	if address == "" {
		return nil, fmt.Errorf("printer address required")
	}
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	return &TCPSpooler{
		address:     address,
		dialTimeout: dialTimeout,
		logg:        logg,
		sales:       sales,
	}, nil
}

func (s *TCPSpooler) Print(ctx context.Context, registerID, payload string) error {
	dialer := net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.address)
	if err != nil {
		s.sales.IncReceipt(registerID, "failed")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "connecting to receipt printer")
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.Write([]byte(payload + feedAndCut)); err != nil {
		s.sales.IncReceipt(registerID, "failed")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing to receipt printer")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithRegisterID(ctx, registerID), "receipt spooled to printer")
	}
	s.sales.IncReceipt(registerID, "printed")
	return nil
}
