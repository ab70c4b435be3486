package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/service"
	ws "github.com/stemsi/klausurgen/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams generation progress to the browser.
type WSHandler struct {
	jobService *service.JobService
	log        zerolog.Logger
	upgrader   websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(jobService *service.JobService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		jobService: jobService,
		log:        log.With().Str("component", "ws_handler").Logger(),
		upgrader:   buildUpgrader(allowedOrigins),
	}
}

// JobProgressStream godoc
// WS /ws/v1/jobs/:job_id/progress
// Sends the current job state, then every progress update until the job finishes.
func (h *WSHandler) JobProgressStream(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe before reading the snapshot so no update falls in between.
	sub, err := h.jobService.Subscribe(ctx, id)
	if err != nil {
		failWith(c, err)
		return
	}
	defer sub.Close()

	job, err := h.jobService.Get(ctx, id)
	if err != nil {
		failWith(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("job_id", id).Logger()
	wsLog.Debug().Msg("Progress client connected")

	if err := ws.WriteTyped(conn, ws.NewProgressResponse(job)); err != nil || job.Finished() {
		_ = ws.Close(conn, "job finished")
		return
	}

	pings := make(chan struct{}, 1)
	go h.readLoop(conn, cancel, pings, wsLog)

	updates := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}

		case msg, ok := <-updates:
			if !ok {
				return
			}
			var update model.GenerationJob
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				wsLog.Warn().Err(err).Msg("Invalid progress payload")
				continue
			}
			if err := ws.WriteTyped(conn, ws.NewProgressResponse(&update)); err != nil {
				wsLog.Debug().Err(err).Msg("Progress write failed")
				return
			}
			if update.Finished() {
				_ = ws.Close(conn, "job finished")
				return
			}
		}
	}
}

// readLoop answers client pings and cancels the stream when the client goes away.
func (h *WSHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc, pings chan<- struct{}, log zerolog.Logger) {
	defer cancel()
	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}
		if msg.Action == ws.ActionPing {
			select {
			case pings <- struct{}{}:
			default:
			}
		}
	}
}
