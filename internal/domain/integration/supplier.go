package integration

import (
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// SupplierID
// ---------------------------------------------------------------------------

// SupplierID identifies a supplier across connectors, logs and inventory rows
type SupplierID string

const (
	// SupplierASColour is AS Colour (REST API, subscription key + login token)
	SupplierASColour SupplierID = "as-colour"
	// SupplierSSActivewear is S&S Activewear (REST API, basic auth)
	SupplierSSActivewear SupplierID = "ss-activewear"
	// SupplierSanMar is SanMar (REST API with OAuth2 client credentials, or a local catalog file)
	SupplierSanMar SupplierID = "sanmar"
)

// String returns the string representation of SupplierID
func (s SupplierID) String() string {
	return string(s)
}

// IsEmpty reports whether the id is blank
func (s SupplierID) IsEmpty() bool {
	return strings.TrimSpace(string(s)) == ""
}

// DisplayName returns a human-readable name for the supplier
func (s SupplierID) DisplayName() string {
	switch s {
	case SupplierASColour:
		return "AS Colour"
	case SupplierSSActivewear:
		return "S&S Activewear"
	case SupplierSanMar:
		return "SanMar"
	default:
		return string(s)
	}
}

var supplierAliases = map[string]SupplierID{
	"as-colour":      SupplierASColour,
	"ascolour":       SupplierASColour,
	"as_colour":      SupplierASColour,
	"as colour":      SupplierASColour,
	"ss-activewear":  SupplierSSActivewear,
	"ssactivewear":   SupplierSSActivewear,
	"ss_activewear":  SupplierSSActivewear,
	"s&s":            SupplierSSActivewear,
	"s&s-activewear": SupplierSSActivewear,
	"s&s activewear": SupplierSSActivewear,
	"sanmar":         SupplierSanMar,
	"san-mar":        SupplierSanMar,
	"san mar":        SupplierSanMar,
}

// NormalizeSupplierID maps the spellings suppliers are known by to their
// canonical id. Unknown ids are lower-cased and trimmed but otherwise kept.
func NormalizeSupplierID(raw string) SupplierID {
	key := strings.ToLower(strings.TrimSpace(raw))
	if id, ok := supplierAliases[key]; ok {
		return id
	}
	return SupplierID(key)
}

// ---------------------------------------------------------------------------
// SKU based supplier detection
// ---------------------------------------------------------------------------

var (
	asColourStylePattern = regexp.MustCompile(`^\d{4,5}$`)

	// Style prefixes carried by S&S (Gildan, Bella+Canvas, Next Level, Comfort Colors, ...)
	ssActivewearPrefixes = []string{"LPC", "LST", "IND", "BC", "NL", "CC", "PC", "DT", "AL", "G", "B"}
)

// DetectSupplier guesses which supplier a style code belongs to.
func DetectSupplier(sku string) SupplierID {
	code := strings.ToUpper(strings.TrimSpace(sku))

	if asColourStylePattern.MatchString(code) {
		return SupplierASColour
	}
	for _, prefix := range ssActivewearPrefixes {
		if strings.HasPrefix(code, prefix) && len(code) > len(prefix) {
			return SupplierSSActivewear
		}
	}
	// SanMar style codes (PC54, ST350, K500) and anything unrecognised
	return SupplierSanMar
}
