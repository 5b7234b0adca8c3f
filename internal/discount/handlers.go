package discount

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/ecommerce-order-core/internal/apperr"
)

// HandleValidate handles GET /api/discounts/:code/validate
func HandleValidate(uc *UseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := uc.Validate(c.Request.Context(), c.Param("code"))
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"discount": d})
	}
}
