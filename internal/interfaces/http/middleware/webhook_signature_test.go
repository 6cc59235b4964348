package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

func TestSignRoundTrip(t *testing.T) {
	body := []byte(`{"supplierId":"sanmar"}`)
	sig := Sign(body, "s3cret")

	assert.True(t, strings.HasPrefix(sig, "sha256="))
	assert.True(t, ValidSignature(body, sig, "s3cret"))
	assert.True(t, ValidSignature(body, strings.TrimPrefix(sig, "sha256="), "s3cret"))
	assert.False(t, ValidSignature(body, sig, "other"))
	assert.False(t, ValidSignature([]byte(`{}`), sig, "s3cret"))
	assert.False(t, ValidSignature(body, "not-hex", "s3cret"))
}

func TestWebhookSignature(t *testing.T) {
	cfg := WebhookSignatureConfig{
		Required: true,
		Secrets:  map[integration.SupplierID]string{integration.SupplierSSActivewear: "ss-secret"},
	}
	router := gin.New()
	router.POST("/webhook", WebhookSignature(cfg), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})

	body := `{"supplierId":"S&S","sku":"SKU-001","quantity":100}`

	tests := []struct {
		name       string
		body       string
		signature  string
		wantStatus int
	}{
		{"valid signature, alias supplier", body, Sign([]byte(body), "ss-secret"), http.StatusOK},
		{"wrong secret", body, Sign([]byte(body), "nope"), http.StatusUnauthorized},
		{"missing signature", body, "", http.StatusUnauthorized},
		{"supplier without secret", `{"supplierId":"sanmar"}`, Sign([]byte(`{"supplierId":"sanmar"}`), "ss-secret"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/webhook", strings.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String(), "handler must still see the body")
			}
		})
	}
}

func TestWebhookSignature_NotRequired(t *testing.T) {
	router := gin.New()
	router.POST("/webhook", WebhookSignature(WebhookSignatureConfig{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/webhook", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusOK, w.Code)
}
