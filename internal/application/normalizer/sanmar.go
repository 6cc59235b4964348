package normalizer

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type sanMarVariant struct {
	UniqueKey string          `json:"uniqueKey"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
	Image     string          `json:"image"`
}

type sanMarProduct struct {
	Style       string          `json:"style"`
	Title       string          `json:"title"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Material    string          `json:"material"`
	Keywords    []string        `json:"keywords"`
	Images      []string        `json:"images"`
	Variants    []sanMarVariant `json:"variants"`
}

// mapSanMar decodes a SanMar product, from the API or a catalog export line
func mapSanMar(payload json.RawMessage) (*Draft, error) {
	var p sanMarProduct
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}
	d := &Draft{
		BaseSKU:     p.Style,
		Name:        p.Title,
		Brand:       p.Brand,
		Description: p.Description,
		Category:    p.Category,
		Material:    p.Material,
		Tags:        p.Keywords,
		Images:      p.Images,
	}
	for _, v := range p.Variants {
		var images []string
		if v.Image != "" {
			images = []string{v.Image}
		}
		d.Variants = append(d.Variants, DraftVariant{
			SupplierSKU: v.UniqueKey,
			Color:       v.Color,
			Size:        v.Size,
			Cost:        v.Price,
			Quantity:    v.Qty,
			Images:      images,
		})
	}
	return d, nil
}
