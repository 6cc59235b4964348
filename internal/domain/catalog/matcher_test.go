package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Heavy Cotton Tee", "heavy  cotton-tee"))
	assert.Equal(t, 1.0, Similarity("Café Crew", "Cafe Crew"))
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 0.0001)
	assert.Greater(t, Similarity("Softstyle T-Shirt", "Softstyle Tshirt"), 0.9)
}

func TestMatcher_FindCandidates(t *testing.T) {
	m := NewMatcher(DefaultMatcherConfig())

	target := UnifiedProduct{SKU: "G500", Name: "Gildan Heavy Cotton T-Shirt", Brand: "Gildan", Category: "T-Shirts", SupplierID: "ss-activewear"}
	pool := []UnifiedProduct{
		{SKU: "5000", Name: "Heavy Cotton T-Shirt", Brand: "GILDAN", Category: "Tees", SupplierID: "sanmar"},
		{SKU: "PC54", Name: "Heavy Cotton T-Shirt", Brand: "Port & Company", Category: "Tees", SupplierID: "sanmar"},
		{SKU: "G200", Name: "Ultra Cotton T-Shirt", Brand: "Gildan", Category: "Tees", SupplierID: "sanmar"},
		{SKU: "G500B", Name: "Heavy Cotton T-Shirt", Brand: "Gildan", Category: "T-Shirts", SupplierID: "ss-activewear"},
	}

	got := m.FindCandidates(target, pool)

	require.Len(t, got, 1)
	assert.Equal(t, "5000", got[0].Product.SKU)
	assert.True(t, got[0].BrandAgreement)
	assert.InDelta(t, 1.0, got[0].Score, 0.0001)
}

func TestMatcher_BrandOptional(t *testing.T) {
	m := NewMatcher(MatcherConfig{Threshold: 0.9})

	target := UnifiedProduct{SKU: "A", Name: "Heavy Cotton T-Shirt", Brand: "Gildan", Category: "Tees", SupplierID: "a"}
	pool := []UnifiedProduct{{SKU: "B", Name: "Heavy Cotton T-Shirt", Brand: "Port & Company", Category: "Tees", SupplierID: "b"}}

	assert.Len(t, m.FindCandidates(target, pool), 1)
}
