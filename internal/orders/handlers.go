package orders

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
)

type placeOrderRequest struct {
	UserID            string `json:"user_id" binding:"required"`
	ShippingAddressID string `json:"shipping_address_id" binding:"required"`
	BillingAddressID  string `json:"billing_address_id" binding:"required"`
	PaymentMethod     string `json:"payment_method" binding:"required"`
	Installments      *int   `json:"installments,omitempty"`
	DiscountCode      string `json:"discount_code,omitempty"`
}

// HandlePlaceOrder handles POST /api/orders
func HandlePlaceOrder(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		order, err := uc.PlaceOrder(c.Request.Context(), PlaceOrderRequest{
			UserID:            req.UserID,
			ShippingAddressID: req.ShippingAddressID,
			BillingAddressID:  req.BillingAddressID,
			PaymentMethod:     req.PaymentMethod,
			Installments:      req.Installments,
			DiscountCode:      req.DiscountCode,
		})
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// HandleListOrders handles GET /api/orders?user_id=...
func HandleListOrders(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		result, err := uc.FindUserOrders(c.Request.Context(), userID)
		if err != nil {
			log.Printf("[LIST ORDERS] user %s failed: %v", userID, err)
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": result})
	}
}

// HandleGetOrder handles GET /api/orders/:number?user_id=...
func HandleGetOrder(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		order, err := uc.FindOrderByNumber(c.Request.Context(), userID, c.Param("number"))
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

type updateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// HandleUpdateStatus handles PATCH /api/orders/:number/status
func HandleUpdateStatus(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		order, err := uc.UpdateStatus(c.Request.Context(), c.Param("number"), req.Status)
		if err != nil {
			log.Printf("[UPDATE STATUS] %s failed: %v", c.Param("number"), err)
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

type cancelOrderRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// HandleCancelOrder handles POST /api/orders/:number/cancel
func HandleCancelOrder(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cancelOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		order, err := uc.CancelOrder(c.Request.Context(), req.UserID, c.Param("number"))
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
