package dto

import "github.com/shopspring/decimal"

// TriggerSyncRequest is the body of POST /sync. An empty trigger means manual.
type TriggerSyncRequest struct {
	Trigger string `json:"trigger" binding:"omitempty,oneof=manual scheduled"`
}

// WebhookRequest is a supplier-pushed inventory update. SKU may be the
// supplier's SKU or the internal variant SKU.
type WebhookRequest struct {
	SupplierID string           `json:"supplierId" binding:"required"`
	SKU        string           `json:"sku" binding:"required"`
	Quantity   *int             `json:"quantity" binding:"required,gte=0"`
	Price      *decimal.Decimal `json:"price"`
}

// WebhookResponse acknowledges an applied webhook update
type WebhookResponse struct {
	Success  bool    `json:"success"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Changes  int     `json:"changes"`
}

// SyncAcceptedResponse is returned when a manual sync outlives the request
// timeout and keeps running in the background
type SyncAcceptedResponse struct {
	Status    string   `json:"status"`
	Suppliers []string `json:"suppliers"`
	Message   string   `json:"message"`
}
