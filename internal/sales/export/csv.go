package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odyssey-erp/odyssey-crm/internal/sales/documents"
)

// WriteCSV emits the document header, one row per line item and the totals.
func (e *Exporter) WriteCSV(w io.Writer, doc *documents.Document) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	records := [][]string{
		{"Document", doc.DocNumber},
		{"Customer", doc.CustomerName},
		{"Issue Date", doc.IssueDate.Format("2006-01-02")},
		{"Due Date", doc.DueDate.Format("2006-01-02")},
		{"Status", string(doc.Status)},
		{"Currency", doc.Currency},
		{},
		{"#", "Item", "Quantity", "Unit Price", "Discount %", "Tax", "Tax %", "Amount", "Discount", "Tax Amount", "Line Total"},
	}
	for _, l := range doc.Lines {
		records = append(records, []string{
			strconv.Itoa(l.LineOrder),
			l.Name,
			formatFloat(l.Quantity),
			formatFloat(l.UnitPrice),
			formatFloat(l.DiscountPercent),
			l.TaxName,
			formatFloat(l.TaxPercent),
			formatMoney(l.Amount),
			formatMoney(l.DiscountAmount),
			formatMoney(l.TaxAmount),
			formatMoney(l.LineTotal),
		})
	}
	records = append(records,
		[]string{},
		[]string{"Subtotal", formatMoney(doc.Subtotal)},
		[]string{"Line Discounts", formatMoney(doc.TotalLineDiscount)},
		[]string{"Document Discount", formatMoney(doc.DocumentDiscountAmount)},
		[]string{"Total Discount", formatMoney(doc.TotalDiscount)},
		[]string{"Total Tax", formatMoney(doc.TotalTax)},
		[]string{"Grand Total", formatMoney(doc.GrandTotal)},
	)

	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
