package inventory

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
)

// HandleCheckStock handles GET /api/inventory/:variantID/check?quantity=N
func HandleCheckStock(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		qty, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity"})
			return
		}

		available, err := uc.CheckStock(c.Request.Context(), c.Param("variantID"), qty)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"variant_id": c.Param("variantID"),
			"quantity":   qty,
			"available":  available,
		})
	}
}

type stockUpdateRequest struct {
	Updates []StockUpdate `json:"updates" binding:"required,min=1,dive"`
}

// HandleConfirmStock handles POST /api/inventory/confirm
func HandleConfirmStock(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stockUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if err := uc.ConfirmStockReduction(c.Request.Context(), req.Updates); err != nil {
			log.Printf("[CONFIRM] failed: %v", err)
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
	}
}

// HandleRestock handles POST /api/inventory/restock
func HandleRestock(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stockUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if err := uc.Restock(c.Request.Context(), req.Updates); err != nil {
			log.Printf("[RESTOCK] failed: %v", err)
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "restocked"})
	}
}

// HandleAdjustStock handles POST /api/inventory/adjust
func HandleAdjustStock(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stockUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if err := uc.AdjustStock(c.Request.Context(), req.Updates); err != nil {
			log.Printf("[ADJUST] failed: %v", err)
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "adjusted"})
	}
}

// HandleLowStockAlerts handles GET /api/inventory/alerts?threshold=N
func HandleLowStockAlerts(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		threshold, err := strconv.Atoi(c.DefaultQuery("threshold", "10"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
			return
		}

		variants, err := uc.LowStockAlerts(c.Request.Context(), threshold)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"variants": variants})
	}
}
