// Package totals computes invoice and proposal line amounts and document
// totals. Every function here is pure and total: malformed numeric input is
// coerced to zero and nothing returns an error.
package totals

// LineItem is one row of an invoice or proposal.
type LineItem struct {
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	Tax             *TaxRef `json:"tax,omitempty"`
}

// TaxPercent returns the percentage of the attached tax, 0 when untaxed.
func (i LineItem) TaxPercent() float64 {
	if i.Tax == nil {
		return 0
	}
	return finite(i.Tax.Percentage)
}

// LineAmounts holds the derived values of a single line.
type LineAmounts struct {
	BaseAmount     float64 `json:"base_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	AfterDiscount  float64 `json:"after_discount"`
	TaxAmount      float64 `json:"tax_amount"`
	LineTotal      float64 `json:"line_total"`
}

// ComputeLineAmounts derives the line amounts for item. Tax applies to the
// post-discount amount and only when taxEnabled is set.
func ComputeLineAmounts(item LineItem, taxEnabled bool) LineAmounts {
	base := finite(item.Quantity) * finite(item.UnitPrice)
	discount := base * (finite(item.DiscountPercent) / 100)
	after := base - discount

	var tax float64
	if taxEnabled {
		tax = after * (item.TaxPercent() / 100)
	}

	return LineAmounts{
		BaseAmount:     base,
		DiscountAmount: discount,
		AfterDiscount:  after,
		TaxAmount:      tax,
		LineTotal:      after + tax,
	}
}
