package form

import (
	"github.com/odyssey-erp/odyssey-crm/internal/billing/totals"
)

// PayloadLine is one serialized line item of a submit request.
type PayloadLine struct {
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	TaxID           int64   `json:"tax_id,omitempty"`
	TaxName         string  `json:"tax_name,omitempty"`
	TaxPercent      float64 `json:"tax_percent"`
	Amount          float64 `json:"amount"`
	DiscountAmount  float64 `json:"discount_amount"`
	TaxAmount       float64 `json:"tax_amount"`
	LineTotal       float64 `json:"line_total"`
}

// Payload is the body submitted when the form is saved. Amounts are rounded
// to two decimals here and nowhere earlier.
type Payload struct {
	Lines                  []PayloadLine           `json:"lines"`
	TaxEnabled             bool                    `json:"tax_enabled"`
	Discount               totals.DocumentDiscount `json:"discount"`
	Subtotal               float64                 `json:"subtotal"`
	TotalTax               float64                 `json:"total_tax"`
	TotalLineDiscount      float64                 `json:"total_line_discount"`
	DocumentDiscountAmount float64                 `json:"document_discount_amount"`
	TotalDiscount          float64                 `json:"total_discount"`
	GrandTotal             float64                 `json:"grand_total"`
}

// Payload builds the submit body from the current state.
func (f *Form) Payload() Payload {
	return BuildPayload(f.input, f.derived)
}

// BuildPayload serializes an input and its derived state.
func BuildPayload(in Input, d Derived) Payload {
	rounded := d.Totals.Rounded()
	p := Payload{
		Lines:                  make([]PayloadLine, len(in.Lines)),
		TaxEnabled:             in.TaxEnabled,
		Discount:               discountOf(in),
		Subtotal:               rounded.Subtotal,
		TotalTax:               rounded.TotalTax,
		TotalLineDiscount:      rounded.TotalLineDiscount,
		DocumentDiscountAmount: rounded.DocumentDiscountAmount,
		TotalDiscount:          rounded.TotalDiscount,
		GrandTotal:             rounded.GrandTotal,
	}
	for i, l := range in.Lines {
		line := PayloadLine{
			Name:            l.Name,
			Description:     l.Description,
			Quantity:        l.Quantity.Float64(),
			UnitPrice:       l.UnitPrice.Float64(),
			DiscountPercent: l.DiscountPercent.Float64(),
			TaxID:           l.TaxID,
		}
		if l.Tax != nil {
			line.TaxID = l.Tax.ID
		}
		if i < len(d.Lines) {
			derived := d.Lines[i]
			line.TaxName = derived.TaxName
			line.TaxPercent = derived.TaxPercent
			line.Amount = totals.Round2(derived.Amount)
			line.DiscountAmount = totals.Round2(derived.DiscountAmount)
			line.TaxAmount = totals.Round2(derived.TaxAmount)
			line.LineTotal = totals.Round2(derived.LineTotal)
		}
		p.Lines[i] = line
	}
	return p
}
