package export

import "github.com/odyssey-erp/odyssey-crm/internal/sales/documents"

type summaryRow struct {
	Label  string
	Amount float64
	Strong bool
}

// summaryRows is the totals block shared by the PDF layouts. Subtotal is
// already net of line discounts, so only the document discount is listed and
// the rows add up to the grand total.
func summaryRows(doc *documents.Document) []summaryRow {
	return []summaryRow{
		{Label: "Subtotal", Amount: doc.Subtotal},
		{Label: "Document Discount", Amount: doc.DocumentDiscountAmount},
		{Label: "Tax", Amount: doc.TotalTax},
		{Label: "Grand Total", Amount: doc.GrandTotal, Strong: true},
	}
}
