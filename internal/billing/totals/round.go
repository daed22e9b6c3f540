package totals

import "github.com/shopspring/decimal"

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return toFloat(round2(v))
}

// Rounded returns a copy of a with every amount rounded to two decimals.
func (a LineAmounts) Rounded() LineAmounts {
	return LineAmounts{
		BaseAmount:     Round2(a.BaseAmount),
		DiscountAmount: Round2(a.DiscountAmount),
		AfterDiscount:  Round2(a.AfterDiscount),
		TaxAmount:      Round2(a.TaxAmount),
		LineTotal:      Round2(a.LineTotal),
	}
}

// Rounded returns a copy of t rounded for display or persistence. The
// calculation itself never rounds intermediate values. Subtotal, tax and both
// discounts are rounded individually; GrandTotal and TotalDiscount are then
// derived from the rounded parts so stored figures always add up.
func (t DocumentTotals) Rounded() DocumentTotals {
	subtotal := round2(t.Subtotal)
	tax := round2(t.TotalTax)
	lineDiscount := round2(t.TotalLineDiscount)
	docDiscount := round2(t.DocumentDiscountAmount)

	out := DocumentTotals{
		Lines:                  make([]LineAmounts, len(t.Lines)),
		Subtotal:               toFloat(subtotal),
		TotalTax:               toFloat(tax),
		TotalLineDiscount:      toFloat(lineDiscount),
		DocumentDiscountAmount: toFloat(docDiscount),
		TotalDiscount:          toFloat(lineDiscount.Add(docDiscount)),
		GrandTotal:             toFloat(subtotal.Sub(docDiscount).Add(tax)),
	}
	for i, l := range t.Lines {
		out.Lines[i] = l.Rounded()
	}
	return out
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(finite(v)).Round(2)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
