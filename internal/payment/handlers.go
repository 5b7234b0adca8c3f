package payment

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
	"github.com/matheusmosca/ecommerce-order-core/internal/orders"
)

type callbackRequest struct {
	OrderNumber   string `json:"order_number" binding:"required"`
	Status        string `json:"status" binding:"required,oneof=SUCCESSFUL FAILED"`
	TransactionID string `json:"transaction_id"`
}

// HandleCallback handles POST /api/payments/callback, the provider webhook.
func HandleCallback(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req callbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		err := uc.ApplyResult(c.Request.Context(), ProviderResult{
			OrderNumber:   req.OrderNumber,
			Status:        orders.PaymentStatus(req.Status),
			TransactionID: req.TransactionID,
		})
		if err != nil {
			log.Printf("[PAYMENT CALLBACK] order %s failed: %v", req.OrderNumber, err)
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "applied", "order_number": req.OrderNumber})
	}
}

type chargeOrderRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// HandleChargeOrder handles POST /api/orders/:number/charge
func HandleChargeOrder(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chargeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		outcome, err := uc.ChargeOrder(c.Request.Context(), req.UserID, c.Param("number"))
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"outcome": outcome})
	}
}
