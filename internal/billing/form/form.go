// Package form keeps an editable invoice or proposal form in sync with the
// totals calculator. User-entered input and computed values live in separate
// structs; computed values are rebuilt from input after every edit and are
// never edited directly.
package form

import (
	"github.com/odyssey-erp/odyssey-crm/internal/billing/totals"
)

// LineInput is the user-editable part of a line item row.
type LineInput struct {
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	Quantity        totals.Number `json:"quantity"`
	UnitPrice       totals.Number `json:"unit_price"`
	DiscountPercent totals.Number `json:"discount_percent"`
	TaxID           int64         `json:"tax_id,omitempty"`
	// Tax is an inline name and percentage pair. It takes precedence over
	// TaxID when set.
	Tax *totals.TaxRef `json:"tax,omitempty"`
}

// DiscountInput is the document discount as entered.
type DiscountInput struct {
	Type  totals.DiscountType `json:"type"`
	Value totals.Number       `json:"value"`
}

// Input is everything the user can type into the form.
type Input struct {
	Lines      []LineInput   `json:"lines"`
	TaxEnabled bool          `json:"tax_enabled"`
	Discount   DiscountInput `json:"discount"`
}

// LineDerived mirrors the read-only amount fields of a line row.
type LineDerived struct {
	Amount         float64 `json:"amount"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	LineTotal      float64 `json:"line_total"`
	TaxName        string  `json:"tax_name,omitempty"`
	TaxPercent     float64 `json:"tax_percent"`
}

// Derived holds every computed field shown by the form.
type Derived struct {
	Lines  []LineDerived         `json:"lines"`
	Totals totals.DocumentTotals `json:"totals"`
}

// Snapshot is the full form state after the latest edit.
type Snapshot struct {
	Input   Input   `json:"input"`
	Derived Derived `json:"derived"`
}

// Derive computes the derived state for in against the tax list. Unknown tax
// ids contribute no tax.
func Derive(in Input, taxes totals.TaxList) Derived {
	items := Items(in, taxes)
	computed := totals.ComputeTotals(items, in.TaxEnabled, discountOf(in))

	lines := make([]LineDerived, len(items))
	for i, item := range items {
		amounts := computed.Lines[i]
		d := LineDerived{
			Amount:         amounts.AfterDiscount,
			DiscountAmount: amounts.DiscountAmount,
			TaxAmount:      amounts.TaxAmount,
			LineTotal:      amounts.LineTotal,
		}
		if item.Tax != nil {
			d.TaxName = item.Tax.Name
			d.TaxPercent = item.Tax.Percentage
		}
		lines[i] = d
	}
	return Derived{Lines: lines, Totals: computed}
}

// Items converts the input rows to calculator line items.
func Items(in Input, taxes totals.TaxList) []totals.LineItem {
	items := make([]totals.LineItem, len(in.Lines))
	for i, l := range in.Lines {
		item := totals.LineItem{
			Name:            l.Name,
			Quantity:        l.Quantity.Float64(),
			UnitPrice:       l.UnitPrice.Float64(),
			DiscountPercent: l.DiscountPercent.Float64(),
		}
		switch {
		case l.Tax != nil:
			ref := *l.Tax
			item.Tax = &ref
		default:
			if ref, ok := taxes.Resolve(l.TaxID); ok {
				item.Tax = ref
			}
		}
		items[i] = item
	}
	return items
}

func discountOf(in Input) totals.DocumentDiscount {
	return totals.DocumentDiscount{Type: in.Discount.Type, Value: in.Discount.Value.Float64()}
}
