package export

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/odyssey-erp/odyssey-crm/internal/sales/documents"
	"github.com/odyssey-erp/odyssey-crm/internal/sales/shared"
)

var documentTemplate = template.Must(template.New("document").Funcs(template.FuncMap{
	"money":   shared.FormatMoney,
	"title":   title,
	"date":    func(doc *documents.Document) string { return doc.IssueDate.Format("02 Jan 2006") },
	"due":     func(doc *documents.Document) string { return doc.DueDate.Format("02 Jan 2006") },
	"qty":     formatFloat,
	"summary": summaryRows,
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.DocNumber}}</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;font-size:12px;color:#222}
table{width:100%;border-collapse:collapse;margin-top:16px}
th,td{padding:6px;border-bottom:1px solid #ddd;text-align:left}
td.num,th.num{text-align:right}
.totals td{border:none}
</style></head>
<body>
<h1>{{title .Kind}} {{.DocNumber}}</h1>
<p>Customer: <strong>{{.CustomerName}}</strong><br>
Issued: {{date .}}<br>Due: {{due .}}<br>Status: {{.Status}}</p>
<table>
<thead><tr><th>Item</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Disc %</th><th>Tax</th><th class="num">Amount</th><th class="num">Tax</th><th class="num">Total</th></tr></thead>
<tbody>
{{- $cur := .Currency}}
{{- range .Lines}}
<tr><td>{{.Name}}{{if .Description}}<br><small>{{.Description}}</small>{{end}}</td><td class="num">{{qty .Quantity}}</td><td class="num">{{money .UnitPrice $cur}}</td><td class="num">{{qty .DiscountPercent}}</td><td>{{.TaxName}}</td><td class="num">{{money .Amount $cur}}</td><td class="num">{{money .TaxAmount $cur}}</td><td class="num">{{money .LineTotal $cur}}</td></tr>
{{- end}}
</tbody>
</table>
<table class="totals">
{{- range summary .}}
<tr><td class="num">{{if .Strong}}<strong>{{.Label}}</strong>{{else}}{{.Label}}{{end}}</td><td class="num">{{if .Strong}}<strong>{{money .Amount $cur}}</strong>{{else}}{{money .Amount $cur}}{{end}}</td></tr>
{{- end}}
</table>
{{if .Notes}}<p>{{.Notes}}</p>{{end}}
</body></html>`))

func buildHTML(doc *documents.Document) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func title(kind documents.Kind) string {
	s := string(kind)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
