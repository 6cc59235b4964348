package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestValidationMessage(t *testing.T) {
	type pushBody struct {
		SupplierID string `json:"supplierId" binding:"required"`
		SKU        string `json:"sku" binding:"required"`
		Quantity   *int   `json:"quantity" binding:"required,gte=0"`
	}

	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req pushBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, ValidationMessage(err))
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing fields listed together", `{"quantity": 1}`, "missing required fields: supplierId, sku"},
		{"missing quantity", `{"supplierId": "sanmar", "sku": "A"}`, "missing required fields: quantity"},
		{"negative quantity", `{"supplierId": "sanmar", "sku": "A", "quantity": -5}`, "quantity: must be greater than or equal to 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/test", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestValidationMessage_NonValidatorError(t *testing.T) {
	assert.Equal(t, "Invalid request body", ValidationMessage(errors.New("unexpected EOF")))
}
