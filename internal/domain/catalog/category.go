package catalog

import (
	"strings"

	"github.com/gosimple/slug"
)

// CategoryOther is assigned when a supplier category has no mapping
const CategoryOther = "other"

var categoryMap = map[string]string{
	"t-shirts":     "t-shirts",
	"t-shirt":      "t-shirts",
	"tees":         "t-shirts",
	"tee":          "t-shirts",
	"tshirts":      "t-shirts",
	"polos":        "polos",
	"polo":         "polos",
	"sport-shirts": "polos",
	"hoodies":      "hoodies",
	"hoodie":       "hoodies",
	"hooded":       "hoodies",
	"sweatshirts":  "sweatshirts",
	"sweatshirt":   "sweatshirts",
	"fleece":       "sweatshirts",
	"crewneck":     "sweatshirts",
	"crewnecks":    "sweatshirts",
	"hats":         "hats",
	"caps":         "hats",
	"cap":          "hats",
	"headwear":     "hats",
	"beanies":      "hats",
	"tank-tops":    "tank-tops",
	"tanks":        "tank-tops",
	"tank":         "tank-tops",
	"long-sleeve":  "long-sleeve",
	"long-sleeves": "long-sleeve",
	"outerwear":    "outerwear",
	"jackets":      "outerwear",
	"jacket":       "outerwear",
	"bags":         "bags",
	"bag":          "bags",
	"totes":        "bags",
	"tote":         "bags",
	"bottoms":      "bottoms",
	"pants":        "bottoms",
	"shorts":       "bottoms",
	"joggers":      "bottoms",
}

// NormalizeCategory maps a supplier category label onto the internal
// category set, falling back to CategoryOther.
func NormalizeCategory(raw string) string {
	key := slug.Make(strings.TrimSpace(raw))
	if key == "" {
		return CategoryOther
	}
	if c, ok := categoryMap[key]; ok {
		return c
	}
	// Multi-word labels such as "Adult T-Shirts" or "Unisex Hoodies"
	parts := strings.Split(key, "-")
	for i := range parts {
		if c, ok := categoryMap[strings.Join(parts[i:], "-")]; ok {
			return c
		}
	}
	return CategoryOther
}
