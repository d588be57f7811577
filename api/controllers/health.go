package controllers

import (
	"context"
	"net/http"

	"github.com/nadiaferrer/studiohub-backend/api/responses"
	pkgerrors "github.com/nadiaferrer/studiohub-backend/pkg/errors"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
)

// pinger is satisfied by the database and redis clients.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness and readiness probes.
type HealthController struct {
	db    pinger
	cache pinger
	logg  *logger.Logger
}

// NewHealthController wires the probe dependencies; either pinger may be nil.
func NewHealthController(db, cache pinger, logg *logger.Logger) *HealthController {
	return &HealthController{db: db, cache: cache, logg: logg}
}

// Live reports process liveness without touching dependencies.
func (c *HealthController) Live(w http.ResponseWriter, _ *http.Request) {
	responses.WriteSuccess(w, map[string]string{"status": "ok"})
}

// Ready verifies the datastore and cache are reachable.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if c.db != nil {
		if err := c.db.Ping(ctx); err != nil {
			responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
			return
		}
	}
	if c.cache != nil {
		if err := c.cache.Ping(ctx); err != nil {
			responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache unavailable"))
			return
		}
	}
	responses.WriteSuccess(w, map[string]string{"status": "ready"})
}
