package delivery

import (
	"fmt"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type WishlistHandler struct {
	useCase usecase.WishlistUseCase
	log     *logrus.Logger
}

func NewWishlistHandler(uc usecase.WishlistUseCase, logger *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *WishlistHandler) RegisterRoutes(router gin.IRouter) {
	wishlist := router.Group("/wishlist")
	{
		wishlist.GET("", h.GetWishlist)
		wishlist.PUT("/:productId", h.AddProduct)
		wishlist.DELETE("/:productId", h.RemoveProduct)
	}
}

type wishlistView struct {
	ProductIDs []string         `json:"product_ids"`
	Products   []domain.Product `json:"products,omitempty"`
}

var wishlistFailed = Notice{Title: "Error", Description: "Failed to update wishlist", Variant: variantDestructive}

func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	session := sessionFrom(c)
	if !session.Authenticated() {
		FailWithNotice(c, fmt.Errorf("view wishlist: %w", domain.ErrNotAuthenticated), "Failed to load wishlist", wishlistFailed)
		return
	}

	ctx := c.Request.Context()
	wishlist, err := h.useCase.Open(ctx, session)
	if err != nil {
		h.log.Errorf("Failed to open wishlist: %v", err)
		FailWithNotice(c, err, "Failed to load wishlist", wishlistFailed)
		return
	}
	products, err := h.useCase.Products(ctx, wishlist)
	if err != nil {
		h.log.Errorf("Failed to load wishlist products: %v", err)
		FailWithNotice(c, err, "Failed to load wishlist", wishlistFailed)
		return
	}

	message := "Wishlist retrieved successfully"
	if len(products) == 0 {
		message = "Your wishlist is empty"
	}
	SuccessResponse(c, http.StatusOK, message, wishlistView{ProductIDs: wishlist.ProductIDs(), Products: products})
}

func (h *WishlistHandler) AddProduct(c *gin.Context) {
	productID := c.Param("productId")
	wishlist, err := h.useCase.Open(c.Request.Context(), sessionFrom(c))
	if err == nil {
		err = wishlist.Add(c.Request.Context(), productID)
	}
	if err != nil {
		h.log.Warnf("Failed to add product %s to wishlist: %v", productID, err)
		FailWithNotice(c, err, "Failed to add to wishlist", wishlistFailed)
		return
	}
	NoticeResponse(c, http.StatusOK, "Product saved to wishlist", wishlistView{ProductIDs: wishlist.ProductIDs()},
		Notice{Title: "Added to Wishlist", Description: "Item has been added to your wishlist"})
}

func (h *WishlistHandler) RemoveProduct(c *gin.Context) {
	productID := c.Param("productId")
	wishlist, err := h.useCase.Open(c.Request.Context(), sessionFrom(c))
	if err == nil {
		err = wishlist.Remove(c.Request.Context(), productID)
	}
	if err != nil {
		h.log.Warnf("Failed to remove product %s from wishlist: %v", productID, err)
		FailWithNotice(c, err, "Failed to remove from wishlist", wishlistFailed)
		return
	}
	NoticeResponse(c, http.StatusOK, "Product removed from wishlist", wishlistView{ProductIDs: wishlist.ProductIDs()},
		Notice{Title: "Removed from Wishlist", Description: "Item has been removed from your wishlist"})
}
