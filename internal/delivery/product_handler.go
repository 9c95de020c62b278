package delivery

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/facets", h.Facets)
		products.GET("/featured", h.Featured)
		products.GET("/:id", h.GetProductByID)
	}
}

type listing struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

func newListing(products []domain.Product) listing {
	return listing{Products: products, Count: len(products)}
}

func listingMessage(products []domain.Product) string {
	if len(products) == 0 {
		return "No products found"
	}
	return "Products retrieved successfully"
}

// parseFloatParam reads an optional float query parameter.
func parseFloatParam(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, raw, domain.ErrValidation)
	}
	return &v, nil
}

// multiParam accepts both repeated parameters and comma separated values.
func multiParam(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseFilter(c *gin.Context) (domain.FilterCriteria, domain.SortKey, error) {
	var criteria domain.FilterCriteria
	var err error

	if criteria.MinPrice, err = parseFloatParam(c, "min_price"); err != nil {
		return criteria, "", err
	}
	if criteria.MaxPrice, err = parseFloatParam(c, "max_price"); err != nil {
		return criteria, "", err
	}
	criteria.Brands = multiParam(c, "brand")
	for _, raw := range multiParam(c, "rating") {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return criteria, "", fmt.Errorf("invalid rating %q: %w", raw, domain.ErrValidation)
		}
		criteria.Ratings = append(criteria.Ratings, r)
	}
	criteria.Query = c.Query("q")

	key, err := domain.ParseSortKey(c.Query("sort"))
	if err != nil {
		return criteria, "", err
	}
	return criteria, key, criteria.Validate()
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	criteria, key, err := parseFilter(c)
	if err != nil {
		h.log.Warnf("Invalid product filter: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid filter: "+err.Error())
		return
	}

	products, err := h.useCase.Browse(c.Request.Context(), usecase.BrowseRequest{
		CategoryID: c.Query("category_id"),
		Criteria:   criteria,
		Sort:       key,
	})
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to list products: %v", err)
		_ = c.Error(err)
		ErrorResponse(c, statusCode, "Failed to list products: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, listingMessage(products), newListing(products))
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id := c.Param("id")
	product, err := h.useCase.GetProduct(c.Request.Context(), id)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Warnf("Failed to get product by ID %s: %v", id, err)
		ErrorResponse(c, statusCode, "Failed to retrieve product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) Facets(c *gin.Context) {
	facets, err := h.useCase.Facets(c.Request.Context(), c.Query("category_id"))
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to compute facets: %v", err)
		ErrorResponse(c, statusCode, "Failed to load filters: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Filters retrieved successfully", facets)
}

func (h *ProductHandler) Featured(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.log.Warnf("Invalid featured limit %q: %v", raw, err)
			ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("Invalid limit %q", raw))
			return
		}
		limit = v
	}

	products, err := h.useCase.Featured(c.Request.Context(), limit)
	if err != nil {
		statusCode := mapErrorToStatus(err)
		h.log.Errorf("Failed to load featured products: %v", err)
		ErrorResponse(c, statusCode, "Failed to load featured products: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, listingMessage(products), newListing(products))
}
