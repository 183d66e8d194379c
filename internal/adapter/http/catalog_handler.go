package http

import (
	"net/http"
	"time"

	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	timeouts
	catalog usecase.CatalogRepo
}

func NewCatalogHandler(catalog usecase.CatalogRepo, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{timeouts: timeouts{timeout}, catalog: catalog}
}

// GET /v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	cats, err := h.catalog.ListCategories(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

// GET /v1/products?category=<slug>
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, c.Query("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
