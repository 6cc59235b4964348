package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name for sync engine spans
const TracerName = "github.com/hypnotizedent/printshop-os-sub018"

// Span attribute keys shared by the sync engine
const (
	AttrSupplierID      = attribute.Key("supplier.id")
	AttrSyncLogID       = attribute.Key("sync.log_id")
	AttrSyncTrigger     = attribute.Key("sync.trigger")
	AttrVariantsSynced  = attribute.Key("sync.variants_synced")
	AttrChangesDetected = attribute.Key("sync.changes_detected")
	AttrSKU             = attribute.Key("inventory.sku")
)

// StartSpan starts an internal span on the global tracer provider.
// The caller must End the returned span.
//
//	ctx, span := telemetry.StartSpan(ctx, "inventorysync.sync_supplier",
//	    telemetry.AttrSupplierID.String(string(id)))
//	defer span.End()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError records an error on the span and sets the span status to error.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
