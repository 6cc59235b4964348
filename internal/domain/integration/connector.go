package integration

import (
	"context"
	"encoding/json"
	"time"
)

// RawProduct is a single product/style exactly as a supplier returned it.
// Payload is decoded by the supplier-specific normalizer.
type RawProduct struct {
	SupplierID SupplierID      `json:"supplierId"`
	ExternalID string          `json:"externalId"`
	Payload    json.RawMessage `json:"payload"`
	FetchedAt  time.Time       `json:"fetchedAt"`
}

// SupplierConnector is the port every supplier adapter implements.
// Implementations own their authentication and apply the shared retry policy.
type SupplierConnector interface {
	// SupplierID returns the canonical id of the supplier behind this connector
	SupplierID() SupplierID

	// FetchProducts returns the supplier's full catalog, following pagination
	FetchProducts(ctx context.Context) ([]RawProduct, error)

	// FetchProduct returns one product by the supplier's own style id.
	// Returns a ConnectorError of kind ErrorKindNotFound when the supplier has no such product.
	FetchProduct(ctx context.Context, id string) (*RawProduct, error)

	// TestConnection performs a cheap authenticated call and reports success
	TestConnection(ctx context.Context) bool
}
