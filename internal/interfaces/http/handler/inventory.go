package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/kegledger/backend/internal/application/inventory"
)

// InventoryHandler handles stock cache and reorder rule endpoints
type InventoryHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService *inventoryapp.StockService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

// List returns one stock row per variant
// @ID           listStock
// @Summary      List stock
// @Description  One stock row per variant
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=[]inventory.StockRowResponse}
// @Failure      500 {object} dto.Response
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	rows, err := h.stockService.StockRows(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Get returns the stock row of one variant
// @ID           getStock
// @Summary      Get variant stock
// @Description  Retrieve the stock row of one variant
// @Tags         inventory
// @Produce      json
// @Param        variant_id path string true "Variant ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventory.StockRowResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/{variant_id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "variant_id")
	if !ok {
		return
	}
	row, err := h.stockService.StockRow(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Adjust adds a delta to a variant's cached stock
// @ID           adjustStock
// @Summary      Adjust stock
// @Description  Add a signed delta to a variant's cached stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        variant_id path string true "Variant ID" format(uuid)
// @Param        request body inventory.AdjustStockRequest true "Request body"
// @Success      200 {object} dto.Response{data=inventory.StockRowResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/{variant_id}/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, ok := h.ParamUUID(c, "variant_id")
	if !ok {
		return
	}
	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	row, err := h.stockService.Adjust(c.Request.Context(), id, req.Delta)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// Set overwrites a variant's cached stock
// @ID           setStock
// @Summary      Set stock
// @Description  Overwrite a variant's cached stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        variant_id path string true "Variant ID" format(uuid)
// @Param        request body inventory.SetStockRequest true "Request body"
// @Success      200 {object} dto.Response{data=inventory.StockRowResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/{variant_id} [put]
func (h *InventoryHandler) Set(c *gin.Context) {
	id, ok := h.ParamUUID(c, "variant_id")
	if !ok {
		return
	}
	var req inventoryapp.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	row, err := h.stockService.Set(c.Request.Context(), id, *req.Qty)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// SetReorderRule sets a variant's reorder threshold
// @ID           setReorderRule
// @Summary      Set reorder rule
// @Description  Set a variant's reorder threshold
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        variant_id path string true "Variant ID" format(uuid)
// @Param        request body inventory.SetReorderRuleRequest true "Request body"
// @Success      200 {object} dto.Response{data=inventory.StockRowResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/{variant_id}/reorder-rule [put]
func (h *InventoryHandler) SetReorderRule(c *gin.Context) {
	id, ok := h.ParamUUID(c, "variant_id")
	if !ok {
		return
	}
	var req inventoryapp.SetReorderRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	row, err := h.stockService.SetReorderRule(c.Request.Context(), id, *req.MinQty)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// DeleteReorderRule removes a variant's reorder threshold
// @ID           deleteReorderRule
// @Summary      Delete reorder rule
// @Description  Remove a variant's reorder threshold
// @Tags         inventory
// @Produce      json
// @Param        variant_id path string true "Variant ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/{variant_id}/reorder-rule [delete]
func (h *InventoryHandler) DeleteReorderRule(c *gin.Context) {
	id, ok := h.ParamUUID(c, "variant_id")
	if !ok {
		return
	}
	if err := h.stockService.DeleteReorderRule(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Alerts lists variants at or below their reorder threshold
// @ID           listReorderAlerts
// @Summary      List reorder alerts
// @Description  Variants at or below their reorder threshold
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=[]inventory.AlertResponse}
// @Failure      500 {object} dto.Response
// @Router       /inventory/alerts [get]
func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.stockService.ReorderAlerts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alerts)
}

// Rebuild recomputes one variant's cached stock from the ledger
// @ID           rebuildStock
// @Summary      Rebuild variant stock
// @Description  Recompute one variant's cached stock from the ledger
// @Tags         inventory
// @Produce      json
// @Param        variant_id path string true "Variant ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventory.RebuildResult}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/{variant_id}/rebuild [post]
func (h *InventoryHandler) Rebuild(c *gin.Context) {
	id, ok := h.ParamUUID(c, "variant_id")
	if !ok {
		return
	}
	result, err := h.stockService.RebuildFromLedger(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RebuildAll recomputes every variant's cached stock from the ledger
// @ID           rebuildAllStock
// @Summary      Rebuild all stock
// @Description  Recompute every variant's cached stock from the ledger
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=[]inventory.RebuildResult}
// @Failure      500 {object} dto.Response
// @Router       /inventory/rebuild [post]
func (h *InventoryHandler) RebuildAll(c *gin.Context) {
	results, err := h.stockService.RebuildAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

type driftQuery struct {
	OnlyDrifted bool `form:"only_drifted"`
}

// Drift compares cached stock with the ledger's net effect per variant
// @ID           getStockDrift
// @Summary      Stock drift report
// @Description  Compare cached stock with the ledger's net effect per variant
// @Tags         inventory
// @Produce      json
// @Param        only_drifted query bool false "Only variants whose cache differs"
// @Success      200 {object} dto.Response{data=[]inventory.DriftResponse}
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /inventory/drift [get]
func (h *InventoryHandler) Drift(c *gin.Context) {
	var q driftQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	rows, err := h.stockService.DriftReport(c.Request.Context(), q.OnlyDrifted)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}
