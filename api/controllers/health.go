package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/rcabrera/tillpoint-backend/api/responses"
	"github.com/rcabrera/tillpoint-backend/pkg/config"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
	"github.com/rcabrera/tillpoint-backend/pkg/logger"
)

// Pinger is the surface a dependency exposes to the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tillpoint-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency and aggregates the failures.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tillpoint-Env", cfg.App.Env)

		var errs error
		for _, dep := range deps {
			if dep == nil {
				continue
			}
			errs = multierr.Append(errs, dep.Ping(r.Context()))
		}
		if errs != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependency not ready"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
