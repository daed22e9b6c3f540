package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/odyssey-erp/odyssey-crm/internal/sales/documents"
	"github.com/odyssey-erp/odyssey-crm/internal/sales/shared"
)

var (
	headerText = props.Text{Style: fontstyle.Bold, Size: 9}
	headerNum  = props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	cellText   = props.Text{Size: 9}
	cellNum    = props.Text{Size: 9, Align: align.Right}
)

// renderLocalPDF lays the document out with maroto. It is used when no
// Gotenberg endpoint is configured.
func renderLocalPDF(doc *documents.Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, fmt.Sprintf("%s %s", title(doc.Kind), doc.DocNumber), props.Text{
			Size:  18,
			Style: fontstyle.Bold,
		}),
	)
	m.AddRow(20,
		col.New(6).Add(
			text.New("Customer: "+doc.CustomerName, props.Text{Top: 0}),
			text.New("Issue date: "+doc.IssueDate.Format("02 Jan 2006"), props.Text{Top: 5}),
			text.New("Due date: "+doc.DueDate.Format("02 Jan 2006"), props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Status: "+string(doc.Status), props.Text{Align: align.Right}),
		),
	)

	m.AddRow(8,
		text.NewCol(4, "Item", headerText),
		text.NewCol(1, "Qty", headerNum),
		text.NewCol(2, "Unit price", headerNum),
		text.NewCol(1, "Disc %", headerNum),
		text.NewCol(2, "Tax", headerNum),
		text.NewCol(2, "Total", headerNum),
	)
	for _, l := range doc.Lines {
		taxLabel := "-"
		if l.TaxName != "" {
			taxLabel = fmt.Sprintf("%s (%s)", l.TaxName, shared.FormatMoney(l.TaxAmount, ""))
		}
		m.AddRow(8,
			text.NewCol(4, l.Name, cellText),
			text.NewCol(1, formatFloat(l.Quantity), cellNum),
			text.NewCol(2, shared.FormatMoney(l.UnitPrice, ""), cellNum),
			text.NewCol(1, formatFloat(l.DiscountPercent), cellNum),
			text.NewCol(2, taxLabel, cellNum),
			text.NewCol(2, shared.FormatMoney(l.LineTotal, ""), cellNum),
		)
	}

	for _, row := range summaryRows(doc) {
		style := cellText
		if row.Strong {
			style = headerText
		}
		m.AddRow(7,
			col.New(7),
			text.NewCol(2, row.Label, style),
			text.NewCol(3, shared.FormatMoney(row.Amount, doc.Currency), props.Text{Size: 9, Style: style.Style, Align: align.Right}),
		)
	}
	if doc.Notes != nil && *doc.Notes != "" {
		m.AddRow(15, text.NewCol(12, *doc.Notes, props.Text{Size: 8, Top: 5}))
	}

	pdf, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return pdf.GetBytes(), nil
}
