package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	financeapp "github.com/backoffice/financeiro/internal/application/finance"
	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/interfaces/http/dto"
)

// catalogKinds maps the URL segment of a catalog to its collection
var catalogKinds = map[string]datastore.Collection{
	"clientes":         datastore.Clients,
	"fornecedores":     datastore.Suppliers,
	"categorias":       datastore.Categories,
	"formas-pagamento": datastore.PaymentMethods,
}

// CatalogHandler serves client, supplier, category and payment method CRUD
type CatalogHandler struct {
	BaseHandler
	service *financeapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service *financeapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Options handles GET /opcoes/:kind, the {id, nome} pairs for form selects
func (h *CatalogHandler) Options(c *gin.Context) {
	kind, ok := catalogKinds[c.Param("kind")]
	if !ok {
		h.Error(c, dto.ErrCodeNotFound, "Unknown catalog")
		return
	}
	candidates, err := h.service.Candidates(c.Request.Context(), kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, candidates)
}

// ListClients handles GET /clientes
func (h *CatalogHandler) ListClients(c *gin.Context) {
	listEntries(h, c, h.service.ListClients)
}

// GetClient handles GET /clientes/:id
func (h *CatalogHandler) GetClient(c *gin.Context) {
	client, err := h.service.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// CreateClient handles POST /clientes
func (h *CatalogHandler) CreateClient(c *gin.Context) {
	createEntry(h, c, h.service.CreateClient)
}

// UpdateClient handles PUT /clientes/:id
func (h *CatalogHandler) UpdateClient(c *gin.Context) {
	updateEntry(h, c, h.service.UpdateClient)
}

// DeleteClient handles DELETE /clientes/:id
func (h *CatalogHandler) DeleteClient(c *gin.Context) {
	deleteEntry(h, c, h.service.DeleteClient)
}

// ListSuppliers handles GET /fornecedores
func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	listEntries(h, c, h.service.ListSuppliers)
}

// CreateSupplier handles POST /fornecedores
func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	createEntry(h, c, h.service.CreateSupplier)
}

// UpdateSupplier handles PUT /fornecedores/:id
func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	updateEntry(h, c, h.service.UpdateSupplier)
}

// DeleteSupplier handles DELETE /fornecedores/:id
func (h *CatalogHandler) DeleteSupplier(c *gin.Context) {
	deleteEntry(h, c, h.service.DeleteSupplier)
}

// ListCategories handles GET /categorias
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	listEntries(h, c, h.service.ListCategories)
}

// CreateCategory handles POST /categorias
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	createEntry(h, c, h.service.CreateCategory)
}

// UpdateCategory handles PUT /categorias/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	updateEntry(h, c, h.service.UpdateCategory)
}

// DeleteCategory handles DELETE /categorias/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	deleteEntry(h, c, h.service.DeleteCategory)
}

// ListPaymentMethods handles GET /formas-pagamento
func (h *CatalogHandler) ListPaymentMethods(c *gin.Context) {
	listEntries(h, c, h.service.ListPaymentMethods)
}

// CreatePaymentMethod handles POST /formas-pagamento
func (h *CatalogHandler) CreatePaymentMethod(c *gin.Context) {
	createEntry(h, c, h.service.CreatePaymentMethod)
}

// UpdatePaymentMethod handles PUT /formas-pagamento/:id
func (h *CatalogHandler) UpdatePaymentMethod(c *gin.Context) {
	updateEntry(h, c, h.service.UpdatePaymentMethod)
}

// DeletePaymentMethod handles DELETE /formas-pagamento/:id
func (h *CatalogHandler) DeletePaymentMethod(c *gin.Context) {
	deleteEntry(h, c, h.service.DeletePaymentMethod)
}

func listEntries[T any](h *CatalogHandler, c *gin.Context, list func(context.Context) ([]T, error)) {
	items, err := list(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	h.Success(c, items)
}

func createEntry[In, T any](h *CatalogHandler, c *gin.Context, create func(context.Context, In) (*T, error)) {
	var in In
	if !h.bindJSON(c, &in) {
		return
	}
	entry, err := create(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

func updateEntry[In, T any](h *CatalogHandler, c *gin.Context, update func(context.Context, string, In) (*T, error)) {
	var in In
	if !h.bindJSON(c, &in) {
		return
	}
	entry, err := update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

func deleteEntry(h *CatalogHandler, c *gin.Context, remove func(context.Context, string) error) {
	if err := remove(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
