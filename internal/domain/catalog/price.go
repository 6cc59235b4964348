package catalog

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PricingRule selects how a retail price is derived from wholesale cost
type PricingRule struct {
	// MarkupPercent is applied as cost * (1 + markup/100)
	MarkupPercent decimal.Decimal
	// FixedPrice, when set, overrides the markup entirely
	FixedPrice *decimal.Decimal
}

// MarkupRule returns a rule applying the given markup percentage
func MarkupRule(percent float64) PricingRule {
	return PricingRule{MarkupPercent: decimal.NewFromFloat(percent)}
}

// FixedPriceRule returns a rule that always yields price
func FixedPriceRule(price decimal.Decimal) PricingRule {
	return PricingRule{FixedPrice: &price}
}

// RetailPrice applies the rule to a wholesale cost, rounded to cents.
// Negative costs are treated as zero.
func RetailPrice(wholesaleCost decimal.Decimal, rule PricingRule) decimal.Decimal {
	if rule.FixedPrice != nil {
		return rule.FixedPrice.Round(2)
	}
	if wholesaleCost.IsNegative() {
		wholesaleCost = decimal.Zero
	}
	factor := decimal.NewFromInt(1).Add(rule.MarkupPercent.Div(hundred))
	return wholesaleCost.Mul(factor).Round(2)
}
