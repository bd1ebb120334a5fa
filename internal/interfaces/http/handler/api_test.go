package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/kegledger/backend/internal/application/catalog"
	inventoryapp "github.com/kegledger/backend/internal/application/inventory"
	ledgerapp "github.com/kegledger/backend/internal/application/ledger"
	partnerapp "github.com/kegledger/backend/internal/application/partner"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/kegledger/backend/internal/infrastructure/cache"
	"github.com/kegledger/backend/internal/infrastructure/config"
	"github.com/kegledger/backend/internal/interfaces/http/dto"
	"github.com/kegledger/backend/internal/interfaces/http/handler"
	"github.com/kegledger/backend/internal/interfaces/http/router"
	"github.com/kegledger/backend/internal/interfaces/http/server"
	"github.com/kegledger/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	repos := testutil.NewSQLiteRepos(t)
	log := zap.NewNop()
	scope := repos.Scope
	clientRepo, productRepo, variantRepo := repos.Client, repos.Product, repos.Variant
	movementRepo, stockRepo, ruleRepo := repos.Movement, repos.Stock, repos.Rule

	stockService := inventoryapp.NewStockService(scope, variantRepo, stockRepo, ruleRepo, log)
	movementService := ledgerapp.NewMovementService(scope, movementRepo, log)
	movementService.SetStockWatcher(stockService)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	movementService.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())

	handlers := router.Handlers{
		Clients: handler.NewClientHandler(
			partnerapp.NewClientService(clientRepo),
			ledgerapp.NewClientAccountService(scope, clientRepo, movementRepo, log),
		),
		Products:  handler.NewProductHandler(catalogapp.NewProductService(productRepo, variantRepo, scope, log)),
		Movements: handler.NewMovementHandler(movementService),
		Inventory: handler.NewInventoryHandler(stockService),
		System:    handler.NewSystemHandler(repos.DB, "test"),
	}
	engine, err := server.NewEngine(config.HTTPConfig{MaxBodySize: 1 << 20}, log, handlers)
	require.NoError(t, err)

	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) do(method, path string, body any, headers ...string) (*httptest.ResponseRecorder, dto.Response) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

// decode re-reads the data field of a success response into out
func decode(t *testing.T, resp dto.Response, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

type idOnly struct {
	ID string `json:"id"`
}

func (a *testAPI) createClient(name string) string {
	a.t.Helper()
	w, resp := a.do(http.MethodPost, "/api/v1/clients", map[string]any{"name": name})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var c idOnly
	decode(a.t, resp, &c)
	return c.ID
}

func (a *testAPI) createKegVariant() string {
	a.t.Helper()
	w, resp := a.do(http.MethodPost, "/api/v1/products", map[string]any{"name": "Fut Blonde"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var p idOnly
	decode(a.t, resp, &p)

	w, resp = a.do(http.MethodPost, "/api/v1/products/"+p.ID+"/variants", map[string]any{
		"label":     "20L",
		"size_l":    "20",
		"price_ttc": "85.00",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var v idOnly
	decode(a.t, resp, &v)
	return v.ID
}

func line(variantID, typ, qty string) map[string]any {
	return map[string]any{"variant_id": variantID, "type": typ, "qty": qty}
}

func TestClientLifecycle(t *testing.T) {
	api := newTestAPI(t)
	id := api.createClient("Bar du Port")

	w, resp := api.do(http.MethodGet, "/api/v1/clients/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Name string `json:"name"`
	}
	decode(t, resp, &got)
	assert.Equal(t, "Bar du Port", got.Name)

	w, resp = api.do(http.MethodGet, "/api/v1/clients?page=1&page_size=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Count)

	w, _ = api.do(http.MethodPut, "/api/v1/clients/"+id, map[string]any{"name": "Bar du Port Sud"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodDelete, "/api/v1/clients/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, resp = api.do(http.MethodGet, "/api/v1/clients/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestCreateClient_Validation(t *testing.T) {
	api := newTestAPI(t)

	w, resp := api.do(http.MethodPost, "/api/v1/clients", map[string]any{"name": ""})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
}

func TestGetClient_MalformedID(t *testing.T) {
	api := newTestAPI(t)

	w, resp := api.do(http.MethodGet, "/api/v1/clients/nope", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}

func TestRecordBatch_UpdatesSummaryAndStock(t *testing.T) {
	api := newTestAPI(t)
	clientID := api.createClient("Cave Martin")
	variantID := api.createKegVariant()

	w, _ := api.do(http.MethodPost, "/api/v1/movements/batches", map[string]any{
		"client_id": clientID,
		"lines": []any{
			line(variantID, "OUT", "3"),
			line(variantID, "IN", "1"),
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp := api.do(http.MethodGet, "/api/v1/clients/"+clientID+"/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		OpenTotal int64 `json:"open_total"`
	}
	decode(t, resp, &summary)
	assert.Equal(t, int64(2), summary.OpenTotal)

	w, resp = api.do(http.MethodGet, "/api/v1/inventory/"+variantID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var row struct {
		Qty int64 `json:"qty"`
	}
	decode(t, resp, &row)
	assert.Equal(t, int64(-3), row.Qty)

	w, resp = api.do(http.MethodGet, "/api/v1/clients/"+clientID+"/movements", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var movements []idOnly
	decode(t, resp, &movements)
	assert.Len(t, movements, 2)

	w, resp = api.do(http.MethodGet, "/api/v1/clients/"+clientID+"/deletion-check", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var check struct {
		Blocked bool `json:"blocked"`
	}
	decode(t, resp, &check)
	assert.True(t, check.Blocked)

	w, resp = api.do(http.MethodDelete, "/api/v1/clients/"+clientID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, resp.Error.Reasons)
}

func TestRecordBatch_OverReturnRejectsWholeBatch(t *testing.T) {
	api := newTestAPI(t)
	clientID := api.createClient("Cave Martin")
	variantID := api.createKegVariant()

	w, resp := api.do(http.MethodPost, "/api/v1/movements/batches", map[string]any{
		"client_id": clientID,
		"lines": []any{
			line(variantID, "OUT", "2"),
			line(variantID, "IN", "5"),
		},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBusinessRule, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "line 2")

	_, resp = api.do(http.MethodGet, "/api/v1/clients/"+clientID+"/movements", nil)
	var movements []idOnly
	decode(t, resp, &movements)
	assert.Empty(t, movements)
}

func TestRecordBatch_IdempotentRetry(t *testing.T) {
	api := newTestAPI(t)
	clientID := api.createClient("Cave Martin")
	variantID := api.createKegVariant()
	body := map[string]any{
		"client_id": clientID,
		"lines":     []any{line(variantID, "OUT", "1")},
	}

	w, _ := api.do(http.MethodPost, "/api/v1/movements/batches", body, handler.IdempotencyKeyHeader, "retry-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp := api.do(http.MethodPost, "/api/v1/movements/batches", body, handler.IdempotencyKeyHeader, "retry-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeDuplicateBatch, resp.Error.Code)

	_, resp = api.do(http.MethodGet, "/api/v1/clients/"+clientID+"/movements", nil)
	var movements []idOnly
	decode(t, resp, &movements)
	assert.Len(t, movements, 1)
}

func TestRecordBatch_UnknownType(t *testing.T) {
	api := newTestAPI(t)
	clientID := api.createClient("Cave Martin")
	variantID := api.createKegVariant()

	w, resp := api.do(http.MethodPost, "/api/v1/movements/batches", map[string]any{
		"client_id": clientID,
		"lines":     []any{line(variantID, "LOST", "1")},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
}

func TestDeleteMovement_RestoresStock(t *testing.T) {
	api := newTestAPI(t)
	clientID := api.createClient("Cave Martin")
	variantID := api.createKegVariant()

	w, resp := api.do(http.MethodPost, "/api/v1/movements", map[string]any{
		"client_id":  clientID,
		"variant_id": variantID,
		"type":       "OUT",
		"qty":        "4",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var m idOnly
	decode(t, resp, &m)

	w, _ = api.do(http.MethodDelete, "/api/v1/movements/"+m.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, resp = api.do(http.MethodGet, "/api/v1/inventory/"+variantID, nil)
	var row struct {
		Qty int64 `json:"qty"`
	}
	decode(t, resp, &row)
	assert.Equal(t, int64(0), row.Qty)
}

func TestInventory_ReorderAlerts(t *testing.T) {
	api := newTestAPI(t)
	variantID := api.createKegVariant()

	w, _ := api.do(http.MethodPut, "/api/v1/inventory/"+variantID, map[string]any{"qty": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = api.do(http.MethodPut, "/api/v1/inventory/"+variantID+"/reorder-rule", map[string]any{"min_qty": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp := api.do(http.MethodGet, "/api/v1/inventory/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []struct {
		Shortfall int64 `json:"shortfall"`
	}
	decode(t, resp, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, int64(2), alerts[0].Shortfall)

	w, _ = api.do(http.MethodPost, "/api/v1/inventory/"+variantID+"/adjust", map[string]any{"delta": 4})
	require.Equal(t, http.StatusOK, w.Code)

	_, resp = api.do(http.MethodGet, "/api/v1/inventory/alerts", nil)
	alerts = nil
	decode(t, resp, &alerts)
	assert.Empty(t, alerts)
}

func TestDeleteProduct_WithVariantsRefused(t *testing.T) {
	api := newTestAPI(t)
	variantID := api.createKegVariant()

	_, resp := api.do(http.MethodGet, "/api/v1/inventory/"+variantID, nil)
	var row struct {
		ProductName string `json:"product_name"`
	}
	decode(t, resp, &row)
	assert.Equal(t, "Fut Blonde", row.ProductName)

	_, resp = api.do(http.MethodGet, "/api/v1/products", nil)
	var products []idOnly
	decode(t, resp, &products)
	require.Len(t, products, 1)

	w, resp := api.do(http.MethodDelete, "/api/v1/products/"+products[0].ID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeBusinessRule, resp.Error.Code)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodGet, "/api/v1/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
