package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/top-magar/indigo-sub018/internal/core/domain"
	"github.com/top-magar/indigo-sub018/internal/core/port"
	"github.com/top-magar/indigo-sub018/internal/repository/postgres"
)

// DashboardHandler serves merchant dashboard data operations. Every data
// access goes through the tenant-scoped transaction executor; there is no
// other path to tenant rows.
type DashboardHandler struct {
	executor *postgres.TenantTxExecutor
	products port.ProductRepository
}

// NewDashboardHandler wires the dashboard handler.
func NewDashboardHandler(executor *postgres.TenantTxExecutor, products port.ProductRepository) *DashboardHandler {
	return &DashboardHandler{executor: executor, products: products}
}

// ListProducts returns the catalog rows of the caller's tenant.
func (h *DashboardHandler) ListProducts(c *gin.Context) {
	var views []ProductView

	err := h.executor.AuthorizedAction(c.Request.Context(), func(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
		products, err := h.products.List(ctx, tx)
		if err != nil {
			return err
		}

		views = make([]ProductView, 0, len(products))
		for _, p := range products {
			views = append(views, newProductView(p))
		}
		return nil
	})
	if err != nil {
		h.respondExecutorError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": views})
}

// CreateProduct inserts a catalog row for the caller's tenant.
func (h *DashboardHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name and price_cents are required"))
		return
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	var view ProductView

	err := h.executor.AuthorizedAction(c.Request.Context(), func(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
		now := time.Now().UTC()
		product := domain.Product{
			ID:         uuid.New(),
			TenantID:   tenantID,
			Name:       req.Name,
			Slug:       domain.GenerateSlug(req.Name),
			PriceCents: req.PriceCents,
			Currency:   currency,
			Active:     true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := h.products.Create(ctx, tx, product); err != nil {
			return err
		}

		view = newProductView(product)
		return nil
	})
	if err != nil {
		h.respondExecutorError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// SaveEditorDraft acknowledges a visual editor save. The draft payload is
// stored by the editor service; this endpoint exists to exercise its
// admission scope and session checks.
func (h *DashboardHandler) SaveEditorDraft(c *gin.Context) {
	err := h.executor.AuthorizedAction(c.Request.Context(), func(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
		return nil
	})
	if err != nil {
		h.respondExecutorError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "saved"})
}

func (h *DashboardHandler) respondExecutorError(c *gin.Context, err error) {
	if errors.Is(err, postgres.ErrUnauthorized) {
		// Generic access-denied: no detail about which check failed.
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "access denied"))
		return
	}
	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "operation failed"))
}

// RegisterRoutes attaches dashboard endpoints to the given group. The visual
// editor carries its own admission scope; everything else shares the
// dashboard scope.
func (h *DashboardHandler) RegisterRoutes(group *gin.RouterGroup, dashboardAdmission, editorAdmission gin.HandlerFunc) {
	group.GET("/products", dashboardAdmission, h.ListProducts)
	group.POST("/products", dashboardAdmission, h.CreateProduct)
	group.PUT("/editor/draft", editorAdmission, h.SaveEditorDraft)
}
