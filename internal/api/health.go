package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/psicoapp/agenda-service/internal/directory"
	"github.com/psicoapp/agenda-service/internal/store"
)

type HealthHandler struct {
	store   store.Store
	pgPool  *pgxpool.Pool // nil unless the postgres driver is active
	redis   *redis.Client // nil unless the redis locker is active
	env     string
	version string
}

func NewHealthHandler(st store.Store, pgPool *pgxpool.Pool, rdb *redis.Client, env, version string) *HealthHandler {
	return &HealthHandler{
		store:   st,
		pgPool:  pgPool,
		redis:   rdb,
		env:     env,
		version: version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	resp := LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	status := "ok"

	// Check the record store with a cheap read
	storeCtx, storeCancel := context.WithTimeout(ctx, 1*time.Second)
	_, err := h.store.FindAll(storeCtx, directory.CollectionSpecialties)
	storeCancel()
	if err != nil {
		deps["store"] = "down"
		status = "error"
	} else {
		deps["store"] = "ok"
	}

	if h.pgPool != nil {
		pgCtx, pgCancel := context.WithTimeout(ctx, 1*time.Second)
		err := h.pgPool.Ping(pgCtx)
		pgCancel()
		if err != nil {
			deps["postgres"] = "down"
			status = "error"
		} else {
			deps["postgres"] = "ok"
		}
	}

	if h.redis != nil {
		redisCtx, redisCancel := context.WithTimeout(ctx, 1*time.Second)
		err := h.redis.Ping(redisCtx).Err()
		redisCancel()
		if err != nil {
			deps["redis"] = "down"
			if status == "ok" {
				status = "degraded"
			} else {
				status = "error"
			}
		} else {
			deps["redis"] = "ok"
		}
	}

	resp := ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}
