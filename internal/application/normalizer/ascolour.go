package normalizer

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// asColourBrand is the brand of every AS Colour style
const asColourBrand = "AS Colour"

type asColourImage struct {
	URL string `json:"url"`
}

type asColourVariant struct {
	SKU            string          `json:"sku"`
	Colour         string          `json:"colour"`
	SizeCode       string          `json:"sizeCode"`
	Price          decimal.Decimal `json:"price"`
	StockAvailable int             `json:"stockAvailable"`
	Images         []asColourImage `json:"images"`
}

type asColourStyle struct {
	StyleCode    string            `json:"styleCode"`
	StyleName    string            `json:"styleName"`
	Description  string            `json:"description"`
	ProductType  string            `json:"productType"`
	Composition  string            `json:"composition"`
	FabricWeight string            `json:"fabricWeight"`
	Fit          string            `json:"fit"`
	Images       []asColourImage   `json:"images"`
	Variants     []asColourVariant `json:"variants"`
}

func imageURLs(images []asColourImage) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.URL)
	}
	return out
}

// mapASColour decodes an AS Colour style with its nested variants
func mapASColour(payload json.RawMessage) (*Draft, error) {
	var style asColourStyle
	if err := json.Unmarshal(payload, &style); err != nil {
		return nil, err
	}
	d := &Draft{
		BaseSKU:     style.StyleCode,
		Name:        style.StyleName,
		Brand:       asColourBrand,
		Description: style.Description,
		Category:    style.ProductType,
		Material:    style.Composition,
		Tags:        []string{style.Fit, style.FabricWeight},
		Images:      imageURLs(style.Images),
	}
	for _, v := range style.Variants {
		d.Variants = append(d.Variants, DraftVariant{
			SupplierSKU: v.SKU,
			Color:       v.Colour,
			Size:        v.SizeCode,
			Cost:        v.Price,
			Quantity:    v.StockAvailable,
			Images:      imageURLs(v.Images),
		})
	}
	return d, nil
}
