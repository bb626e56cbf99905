package controllers

import (
	"context"
	"net/http"

	"github.com/nilecommerce/admin-service/api/responses"
	"github.com/nilecommerce/admin-service/pkg/config"
	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

const envHeader = "X-Nile-Env"

// Pinger checks one dependency's availability.
type Pinger func(ctx context.Context) error

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, "live", map[string]string{"status": "live"})
	}
}

// HealthReady answers 200 only when every registered dependency responds.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		for name, ping := range pingers {
			if ping == nil {
				continue
			}
			if err := ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeInternal, err, name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, "ready", map[string]string{"status": "ready"})
	}
}
