package totals

// DiscountType selects how a document discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// DocumentDiscount is applied to the whole document after line discounts.
type DocumentDiscount struct {
	Type  DiscountType `json:"type"`
	Value float64      `json:"value"`
}

// Amount returns the discount for the given pre-tax subtotal. A fixed
// discount is not prorated; an empty or unknown type yields 0.
func (d DocumentDiscount) Amount(subtotal float64) float64 {
	switch d.Type {
	case DiscountPercentage:
		return subtotal * (finite(d.Value) / 100)
	case DiscountFixed:
		return finite(d.Value)
	default:
		return 0
	}
}

// DocumentTotals is the aggregate result for an invoice or proposal.
type DocumentTotals struct {
	Lines                  []LineAmounts `json:"lines"`
	Subtotal               float64       `json:"subtotal"`
	TotalTax               float64       `json:"total_tax"`
	TotalLineDiscount      float64       `json:"total_line_discount"`
	DocumentDiscountAmount float64       `json:"document_discount_amount"`
	TotalDiscount          float64       `json:"total_discount"`
	GrandTotal             float64       `json:"grand_total"`
}

// ComputeTotals sums the line items of a document. Subtotal is the pre-tax,
// post-line-discount sum and is accumulated directly rather than derived
// from line totals.
func ComputeTotals(items []LineItem, taxEnabled bool, discount DocumentDiscount) DocumentTotals {
	out := DocumentTotals{Lines: make([]LineAmounts, 0, len(items))}
	for _, item := range items {
		amounts := ComputeLineAmounts(item, taxEnabled)
		out.Lines = append(out.Lines, amounts)
		out.Subtotal += amounts.AfterDiscount
		out.TotalTax += amounts.TaxAmount
		out.TotalLineDiscount += amounts.DiscountAmount
	}
	out.DocumentDiscountAmount = discount.Amount(out.Subtotal)
	out.GrandTotal = out.Subtotal - out.DocumentDiscountAmount + out.TotalTax
	out.TotalDiscount = out.TotalLineDiscount + out.DocumentDiscountAmount
	return out
}
