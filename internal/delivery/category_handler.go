package delivery

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategoryByID)
		categories.GET("/:id/products", h.ListCategoryProducts)
	}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.useCase.ListCategories(c.Request.Context())
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to list categories: %v", err)
		ErrorResponse(c, statusCode, "Failed to list categories: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id := c.Param("id")
	category, err := h.useCase.GetCategory(c.Request.Context(), id)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to get category by ID %s: %v", id, err)
		ErrorResponse(c, statusCode, "Failed to retrieve category: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

type categoryListing struct {
	Category *domain.Category `json:"category"`
	listing
}

func (h *CategoryHandler) ListCategoryProducts(c *gin.Context) {
	id := c.Param("id")
	criteria, key, err := parseFilter(c)
	if err != nil {
		h.log.Warnf("Invalid filter for category %s: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid filter: "+err.Error())
		return
	}

	category, products, err := h.useCase.CategoryProducts(c.Request.Context(), id, criteria, key)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to list products of category %s: %v", id, err)
		ErrorResponse(c, statusCode, "Failed to list category products: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, listingMessage(products), categoryListing{Category: category, listing: newListing(products)})
}
