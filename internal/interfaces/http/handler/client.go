package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/kegledger/backend/internal/application/ledger"
	partnerapp "github.com/kegledger/backend/internal/application/partner"
	"github.com/kegledger/backend/internal/domain/shared"
)

// ClientHandler handles client account endpoints
type ClientHandler struct {
	BaseHandler
	clientService  *partnerapp.ClientService
	accountService *ledgerapp.ClientAccountService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *partnerapp.ClientService, accountService *ledgerapp.ClientAccountService) *ClientHandler {
	return &ClientHandler{
		clientService:  clientService,
		accountService: accountService,
	}
}

// Create opens a client account
// @ID           createClient
// @Summary      Create client
// @Description  Open a client account
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body partner.CreateClientRequest true "Request body"
// @Success      201 {object} dto.Response{data=partner.ClientResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req partnerapp.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// List returns clients ordered by name
// @ID           listClients
// @Summary      List clients
// @Description  List clients ordered by name
// @Tags         clients
// @Produce      json
// @Param        search query string false "Search term"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(50)
// @Success      200 {object} dto.Response{data=[]partner.ClientResponse}
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var filter partnerapp.ClientListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	clients, err := h.clientService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, clients, page, pageSize, len(clients))
}

// GetByID returns one client
// @ID           getClientById
// @Summary      Get client by ID
// @Description  Retrieve a client by its ID
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=partner.ClientResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Update replaces a client's name and contact details
// @ID           updateClient
// @Summary      Update client
// @Description  Replace a client's name and contact details
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body partner.UpdateClientRequest true "Request body"
// @Success      200 {object} dto.Response{data=partner.ClientResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Summary returns the client's open balances, deposits, volume and
// equipment on loan
// @ID           getClientSummary
// @Summary      Get client account summary
// @Description  Open balances per variant, deposits held, volume and equipment on loan
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledger.ClientSummaryResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /clients/{id}/summary [get]
func (h *ClientHandler) Summary(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	summary, err := h.accountService.Summary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// CanDelete reports whether the client may be deleted and why not
// @ID           checkClientDeletion
// @Summary      Check client deletion
// @Description  Report whether a client can be deleted and the blocking reasons
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledger.DeletionCheck}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /clients/{id}/deletion-check [get]
func (h *ClientHandler) CanDelete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	check, err := h.accountService.CanDeleteClient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, check)
}

// Delete removes a settled client and its movement history
// @ID           deleteClient
// @Summary      Delete client
// @Description  Delete a settled client and its movement history
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.accountService.DeleteClient(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func pageOf(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = shared.DefaultFilter().PageSize
	}
	return page, pageSize
}
