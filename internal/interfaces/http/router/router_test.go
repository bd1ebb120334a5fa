package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("clients", "/clients").
		GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, "client "+c.Param("id")) }).
		DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	NewRouter(engine).Register(group).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/clients/42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "client 42", w.Body.String())

	assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodDelete, "/api/v1/clients/42").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/clients/42").Code)
}

func TestDomainGroup_StaticAndParamSiblings(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("inventory", "/inventory").
		GET("/alerts", func(c *gin.Context) { c.String(http.StatusOK, "alerts") }).
		GET("/:variant_id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("variant_id")) })
	NewRouter(engine).Register(group).Setup()

	assert.Equal(t, "alerts", serve(engine, http.MethodGet, "/api/v1/inventory/alerts").Body.String())
	assert.Equal(t, "abc", serve(engine, http.MethodGet, "/api/v1/inventory/abc").Body.String())
}

func TestDomainGroup_MiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("products", "/products").Use(func(c *gin.Context) {
		c.Header("X-Group", "products")
		c.Next()
	})
	group.Group("variants", "/variants").
		PATCH("/:variant_id", func(c *gin.Context) { c.Status(http.StatusOK) })

	NewRouter(engine).Register(group).Setup()

	w := serve(engine, http.MethodPatch, "/api/v1/products/variants/v1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "products", w.Header().Get("X-Group"))
	assert.Equal(t, "products", group.Name())
	assert.Equal(t, "/products", group.Prefix())
}
