package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/http/dto"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body,
// optionally prefixed with "sha256="
const SignatureHeader = "X-Webhook-Signature"

// WebhookSignatureConfig configures webhook signature checks
type WebhookSignatureConfig struct {
	// Required turns verification on. It may only be off outside production.
	Required bool
	// Secrets maps a canonical supplier id to its signing secret
	Secrets map[integration.SupplierID]string
	Logger  *zap.Logger
}

// WebhookSignature verifies that a push was signed with the secret of the
// supplier named in its body. When not required every request passes.
func WebhookSignature(cfg WebhookSignatureConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if !cfg.Required {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortUnauthorized(c, "Unreadable request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var envelope struct {
			SupplierID string `json:"supplierId"`
		}
		_ = json.Unmarshal(body, &envelope)
		supplierID := integration.NormalizeSupplierID(envelope.SupplierID)

		secret := cfg.Secrets[supplierID]
		if secret == "" {
			log.Warn("Webhook rejected: no signing secret for supplier",
				zap.String("supplier_id", envelope.SupplierID))
			abortUnauthorized(c, "Webhook signature cannot be verified for this supplier")
			return
		}

		if !ValidSignature(body, c.GetHeader(SignatureHeader), secret) {
			log.Warn("Webhook rejected: bad signature", zap.String("supplier_id", supplierID.String()))
			abortUnauthorized(c, "Invalid webhook signature")
			return
		}
		c.Next()
	}
}

// ValidSignature reports whether signature is the HMAC-SHA256 of body under secret
func ValidSignature(body []byte, signature, secret string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	got, err := hex.DecodeString(signature)
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign returns the header value for body signed with secret
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthorized, message, GetRequestID(c),
	))
}
