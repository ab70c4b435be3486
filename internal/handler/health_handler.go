package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/stemsi/klausurgen/internal/config"
	"github.com/stemsi/klausurgen/internal/response"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and whether the backing stores answer.
type HealthHandler struct {
	db        Pinger
	rdb       *redis.Client
	startTime time.Time
}

func NewHealthHandler(db Pinger, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb, startTime: time.Now()}
}

// Live godoc
// GET /health
func (h *HealthHandler) Live(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

type readiness struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	Redis      string `json:"redis"`
	QueueDepth int64  `json:"queue_depth"`
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines"`
}

// Ready godoc
// GET /health/ready
// Pings PostgreSQL and Redis and reports the generation queue depth.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	r := readiness{
		Status:     "ok",
		Database:   "ok",
		Redis:      "ok",
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}
	if err := h.db.Ping(ctx); err != nil {
		r.Status, r.Database = "degraded", err.Error()
	}
	depth, err := h.rdb.LLen(ctx, config.WorkerKey.GenerateJobsQueue).Result()
	if err != nil {
		r.Status, r.Redis = "degraded", err.Error()
	}
	r.QueueDepth = depth

	status := http.StatusOK
	if r.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, r)
}
