package normalizer

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/catalog"
)

// ssImageBase prefixes the relative image paths in the S&S feed
const ssImageBase = "https://www.ssactivewear.com/"

type ssRow struct {
	SKU             string          `json:"sku"`
	StyleID         json.Number     `json:"styleID"`
	BrandName       string          `json:"brandName"`
	StyleName       string          `json:"styleName"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	BaseCategory    string          `json:"baseCategory"`
	ColorName       string          `json:"colorName"`
	SizeName        string          `json:"sizeName"`
	PiecePrice      decimal.Decimal `json:"piecePrice"`
	DozenPrice      decimal.Decimal `json:"dozenPrice"`
	CasePrice       decimal.Decimal `json:"casePrice"`
	CustomerPrice   decimal.Decimal `json:"customerPrice"`
	CaseQty         int             `json:"caseQty"`
	Qty             int             `json:"qty"`
	ColorFrontImage string          `json:"colorFrontImage"`
}

func (r ssRow) cost() decimal.Decimal {
	if r.CustomerPrice.IsPositive() {
		return r.CustomerPrice
	}
	return r.PiecePrice
}

func ssImage(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return ssImageBase + strings.TrimPrefix(path, "/")
}

// mapSSActivewear decodes the SKU rows of one S&S style. The first row
// carries the style level attributes and the quantity price tiers.
func mapSSActivewear(payload json.RawMessage) (*Draft, error) {
	var rows []ssRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("style has no sku rows")
	}

	first := rows[0]
	name := strings.TrimSpace(first.Title)
	if name == "" {
		name = strings.TrimSpace(first.BrandName + " " + first.StyleName)
	}
	d := &Draft{
		BaseSKU:     first.StyleName,
		Name:        name,
		Brand:       first.BrandName,
		Description: first.Description,
		Category:    first.BaseCategory,
		BulkBreaks: []catalog.PriceBreak{
			{MinQuantity: 1, Price: first.PiecePrice},
			{MinQuantity: 12, Price: first.DozenPrice},
			{MinQuantity: first.CaseQty, Price: first.CasePrice},
		},
	}

	for _, r := range rows {
		img := ssImage(r.ColorFrontImage)
		d.Images = append(d.Images, img)
		d.Variants = append(d.Variants, DraftVariant{
			SupplierSKU: r.SKU,
			Color:       r.ColorName,
			Size:        r.SizeName,
			Cost:        r.cost(),
			Quantity:    r.Qty,
			Images:      []string{img},
		})
	}
	return d, nil
}
