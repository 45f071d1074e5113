package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beepbasket/backend/internal/domain"
	"github.com/beepbasket/backend/internal/events"
	"github.com/beepbasket/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store    domain.CacheStore
	catalog  domain.CatalogClient
	resolver *usecase.Resolver
	bus      *events.Bus
}

// NewHandler creates a new HTTP handler
func NewHandler(store domain.CacheStore, catalog domain.CatalogClient, resolver *usecase.Resolver, bus *events.Bus) *Handler {
	return &Handler{
		store:    store,
		catalog:  catalog,
		resolver: resolver,
		bus:      bus,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "beepbasket-backend",
		"version": "1.0.0",
	})
}

// ListMappings returns the full cache document.
func (h *Handler) ListMappings(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Export())
}

// AddMapping applies a manual barcode-to-product mapping, renaming matching
// list items when the name changed.
func (h *Handler) AddMapping(c *gin.Context) {
	var req domain.MappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.resolver.AddMapping(c.Request.Context(), req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing barcode or name"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveMapping deletes the cached record for a barcode.
func (h *Handler) RemoveMapping(c *gin.Context) {
	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.resolver.RemoveMapping(c.Request.Context(), req.Barcode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing barcode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// cacheAddRequest mirrors the direct cache-add passthrough payload.
type cacheAddRequest struct {
	Barcode string               `json:"barcode"`
	Product domain.ProductRecord `json:"product_data"`
}

// CacheAdd stores a caller-provided record directly, without list sync.
func (h *Handler) CacheAdd(c *gin.Context) {
	var req cacheAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Barcode == "" || req.Product.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing barcode or product_data"})
		return
	}

	h.store.SetProduct(req.Barcode, req.Product)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CacheRemove deletes a cache entry directly, without list sync.
func (h *Handler) CacheRemove(c *gin.Context) {
	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Barcode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing barcode"})
		return
	}

	h.store.Remove(req.Barcode)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Lookup queries the catalog for a single barcode, bypassing the cache.
func (h *Handler) Lookup(c *gin.Context) {
	barcode := c.Param("barcode")

	rec, err := h.catalog.Lookup(c.Request.Context(), barcode)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Scan accepts a raw scan payload and fires the barcode-scanned event.
// Resolution runs off the request goroutine; the endpoint only acknowledges
// receipt.
func (h *Handler) Scan(c *gin.Context) {
	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Barcode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing barcode"})
		return
	}

	go h.bus.Publish(events.Event{
		Topic: events.TopicBarcodeScanned,
		Data:  map[string]string{"barcode": req.Barcode},
	})
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// StateChanged accepts a generic state-change notification, typically from
// a hardware scanner sensor, and fires the state-changed event.
func (h *Handler) StateChanged(c *gin.Context) {
	var req struct {
		EntityID string `json:"entity_id"`
		NewState string `json:"new_state"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.EntityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing entity_id"})
		return
	}

	go h.bus.Publish(events.Event{
		Topic: events.TopicStateChanged,
		Data: map[string]string{
			"entity_id": req.EntityID,
			"new_state": req.NewState,
		},
	})
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}
