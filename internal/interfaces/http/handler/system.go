package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kegledger/backend/internal/interfaces/http/dto"
	"github.com/kegledger/backend/internal/interfaces/http/middleware"
)

// DatabasePinger is the part of the database the health check needs
type DatabasePinger interface {
	Ping() error
}

// SystemHandler serves liveness and readiness checks
type SystemHandler struct {
	BaseHandler
	db        DatabasePinger
	version   string
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db DatabasePinger, version string) *SystemHandler {
	return &SystemHandler{db: db, version: version, startedAt: time.Now()}
}

// HealthResponse is the body of the health endpoints
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Uptime   string `json:"uptime"`
	Database string `json:"database,omitempty"`
}

// Live reports that the process is serving requests
// @ID           healthLive
// @Summary      Liveness
// @Description  Report that the process is serving requests
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Router       /health/live [get]
func (h *SystemHandler) Live(c *gin.Context) {
	h.Success(c, HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Ready reports whether the database answers
// @ID           healthReady
// @Summary      Readiness
// @Description  Report whether the database answers
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response
// @Router       /health/ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Uptime:   time.Since(h.startedAt).Round(time.Second).String(),
		Database: "up",
	}
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
			"DATABASE_UNAVAILABLE", err.Error(), middleware.GetRequestID(c)))
		return
	}
	h.Success(c, resp)
}
