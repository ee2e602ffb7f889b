package controllers

import (
	"net/http"

	"github.com/cjdworks/stockpos-backend/api/responses"
	"github.com/cjdworks/stockpos-backend/pkg/config"
	"github.com/cjdworks/stockpos-backend/pkg/db"
	pkgerrors "github.com/cjdworks/stockpos-backend/pkg/errors"
	"github.com/cjdworks/stockpos-backend/pkg/logger"
	"github.com/cjdworks/stockpos-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StockPOS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, dbPinger db.Pinger, redisPinger redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-StockPOS-Env", cfg.App.Env)

		if dbPinger != nil {
			if err := dbPinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if redisPinger != nil {
			if err := redisPinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
