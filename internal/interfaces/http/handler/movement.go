package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/kegledger/backend/internal/application/ledger"
)

// IdempotencyKeyHeader lets a client retry a batch submission safely
const IdempotencyKeyHeader = "Idempotency-Key"

// MovementHandler handles ledger movement endpoints
type MovementHandler struct {
	BaseHandler
	movementService *ledgerapp.MovementService
}

// NewMovementHandler creates a new MovementHandler
func NewMovementHandler(movementService *ledgerapp.MovementService) *MovementHandler {
	return &MovementHandler{movementService: movementService}
}

// RecordBatch appends every line of a batch or none of them. The
// Idempotency-Key header is used when the body carries no key.
// @ID           recordMovementBatch
// @Summary      Record movement batch
// @Description  Append every line of a batch atomically, or none of them
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Batch idempotency key"
// @Param        request body ledger.RecordBatchRequest true "Request body"
// @Success      201 {object} dto.Response{data=ledger.BatchResult}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /movements/batches [post]
func (h *MovementHandler) RecordBatch(c *gin.Context) {
	var req ledgerapp.RecordBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)
	}
	result, err := h.movementService.RecordBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Record appends a single movement
// @ID           recordMovement
// @Summary      Record movement
// @Description  Append a single movement to a client's ledger
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        request body ledger.RecordMovementRequest true "Request body"
// @Success      201 {object} dto.Response{data=ledger.MovementResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /movements [post]
func (h *MovementHandler) Record(c *gin.Context) {
	var req ledgerapp.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	movement, err := h.movementService.RecordMovement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// ListByClient returns a client's movements, oldest first
// @ID           listClientMovements
// @Summary      List client movements
// @Description  List a client's movements, oldest first
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]ledger.MovementResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /clients/{id}/movements [get]
func (h *MovementHandler) ListByClient(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	movements, err := h.movementService.ListClientMovements(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// Delete removes a movement and reverses its stock effect
// @ID           deleteMovement
// @Summary      Delete movement
// @Description  Delete a movement and reverse its stock effect
// @Tags         movements
// @Produce      json
// @Param        id path string true "Movement ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /movements/{id} [delete]
func (h *MovementHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.movementService.DeleteMovement(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
