package cart

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
)

type addItemRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// HandleGetCart handles GET /api/cart?user_id=...
func HandleGetCart(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		crt, err := uc.Get(c.Request.Context(), userID)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": crt})
	}
}

// HandleAddItem handles POST /api/cart/items
func HandleAddItem(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		crt, err := uc.AddItem(c.Request.Context(), req.UserID, req.VariantID, req.Quantity)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": crt})
	}
}

// HandleRemoveItem handles DELETE /api/cart/items/:variantID?user_id=...
func HandleRemoveItem(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		crt, err := uc.RemoveItem(c.Request.Context(), userID, c.Param("variantID"))
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": crt})
	}
}
