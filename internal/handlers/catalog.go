package handlers

import (
	"net/http"
	"strings"

	"github.com/zuricart/api/internal/platform/httpx"
	"github.com/zuricart/api/internal/platform/pagination"
	"github.com/zuricart/api/internal/repositories"
	"github.com/zuricart/api/internal/services"
)

// CatalogHandler serves the public product catalog.
type CatalogHandler struct {
	catalog  services.CatalogService
	defaults pagination.Defaults
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog services.CatalogService, defaults pagination.Defaults) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, defaults: defaults}
}

// List responds to GET /products.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r, h.defaults)
	page, err := h.catalog.ListProducts(r.Context(), repositories.ProductListFilter{
		ListFilter: repositories.ListFilter{Offset: params.Offset(), Limit: params.Limit},
		ActiveOnly: true,
		Search:     strings.TrimSpace(r.URL.Query().Get("search")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]productResponse, 0, len(page.Items))
	for _, view := range page.Items {
		items = append(items, toProductResponse(view))
	}
	httpx.WriteSuccessWithMeta(w, http.StatusOK, items, "", params.Meta(page.Total))
}

// Get responds to GET /products/{productID}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "productID")
	if !ok {
		return
	}
	view, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, toProductResponse(view), "")
}
