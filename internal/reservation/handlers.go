package reservation

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
)

type reserveRequest struct {
	Lines []Line `json:"lines" binding:"required,min=1,dive"`
}

type resolveRequest struct {
	ReservationID string `json:"reservation_id" binding:"required"`
	Lines         []Line `json:"lines" binding:"required,min=1,dive"`
}

// HandleReserve handles POST /api/inventory/reserve
func HandleReserve(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reserveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		res, err := m.Reserve(c.Request.Context(), req.Lines)
		if err != nil {
			log.Printf("[RESERVE] failed: %v", err)
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusCreated, res)
	}
}

// HandleRelease handles POST /api/inventory/release
func HandleRelease(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resolveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if err := m.Release(c.Request.Context(), req.ReservationID, req.Lines); err != nil {
			log.Printf("[RELEASE] reservation %s failed: %v", req.ReservationID, err)
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "released", "reservation_id": req.ReservationID})
	}
}

// HandleConfirm handles POST /api/inventory/confirm-reservation
func HandleConfirm(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resolveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if err := m.Confirm(c.Request.Context(), req.ReservationID, req.Lines); err != nil {
			log.Printf("[CONFIRM] reservation %s failed: %v", req.ReservationID, err)
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "confirmed", "reservation_id": req.ReservationID})
	}
}
