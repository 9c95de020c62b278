package delivery

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	useCase usecase.CartUseCase
	log     *logrus.Logger
}

func NewCartHandler(uc usecase.CartUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CartHandler) RegisterRoutes(router gin.IRouter) {
	cart := router.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.PATCH("/items/:id", h.UpdateItem)
		cart.DELETE("/items/:id", h.RemoveItem)
	}
}

type cartView struct {
	Lines   []domain.CartLine   `json:"lines"`
	Summary usecase.CartSummary `json:"summary"`
}

func viewOf(cart *usecase.Cart) cartView {
	return cartView{Lines: cart.Lines(), Summary: cart.Summary()}
}

type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

var cartLoadFailed = Notice{Title: "Error", Description: "Failed to load cart items", Variant: variantDestructive}

func (h *CartHandler) open(c *gin.Context) (*usecase.Cart, bool) {
	cart, err := h.useCase.Open(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.log.Errorf("Failed to open cart: %v", err)
		FailWithNotice(c, err, "Failed to load cart", cartLoadFailed)
		return nil, false
	}
	return cart, true
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, ok := h.open(c)
	if !ok {
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", viewOf(cart))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for add to cart: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, ok := h.open(c)
	if !ok {
		return
	}
	if err := cart.AddItem(c.Request.Context(), req.ProductID, req.Quantity); err != nil {
		h.log.Warnf("Failed to add product %s to cart: %v", req.ProductID, err)
		FailWithNotice(c, err, "Failed to add item to cart",
			Notice{Title: "Error", Description: "Failed to add item to cart", Variant: variantDestructive})
		return
	}

	NoticeResponse(c, http.StatusOK, "Item added to cart", viewOf(cart),
		Notice{Title: "Added to Cart", Description: "Item has been added to your cart"})
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	lineID := c.Param("id")
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for cart line %s update: %v", lineID, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cart, ok := h.open(c)
	if !ok {
		return
	}
	if err := cart.SetQuantity(c.Request.Context(), lineID, *req.Quantity); err != nil {
		h.log.Warnf("Failed to update cart line %s: %v", lineID, err)
		FailWithNotice(c, err, "Failed to update quantity",
			Notice{Title: "Error", Description: "Failed to update quantity", Variant: variantDestructive})
		return
	}

	if *req.Quantity == 0 {
		NoticeResponse(c, http.StatusOK, "Item removed from cart", viewOf(cart),
			Notice{Title: "Removed from Cart", Description: "Item has been removed from your cart"})
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart updated", viewOf(cart))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	lineID := c.Param("id")
	cart, ok := h.open(c)
	if !ok {
		return
	}
	if err := cart.RemoveItem(c.Request.Context(), lineID); err != nil {
		h.log.Warnf("Failed to remove cart line %s: %v", lineID, err)
		FailWithNotice(c, err, "Failed to remove item from cart",
			Notice{Title: "Error", Description: "Failed to remove item from cart", Variant: variantDestructive})
		return
	}

	NoticeResponse(c, http.StatusOK, "Item removed from cart", viewOf(cart),
		Notice{Title: "Removed from Cart", Description: "Item has been removed from your cart"})
}
