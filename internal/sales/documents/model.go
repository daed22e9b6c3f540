// Package documents stores invoices and proposals. Both kinds share one table
// and one set of line items; they differ only in numbering and the status
// workflow.
package documents

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindInvoice  Kind = "invoice"
	KindProposal Kind = "proposal"
)

func (k Kind) Valid() bool {
	return k == KindInvoice || k == KindProposal
}

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusIssued   Status = "ISSUED"
	StatusPaid     Status = "PAID"
	StatusVoid     Status = "VOID"
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

type Document struct {
	ID                     int64     `json:"id" db:"id"`
	Reference              uuid.UUID `json:"reference" db:"reference"`
	Kind                   Kind      `json:"kind" db:"kind"`
	DocNumber              string    `json:"doc_number" db:"doc_number"`
	CompanyID              int64     `json:"company_id" db:"company_id"`
	CustomerName           string    `json:"customer_name" db:"customer_name"`
	CustomerEmail          *string   `json:"customer_email,omitempty" db:"customer_email"`
	IssueDate              time.Time `json:"issue_date" db:"issue_date"`
	DueDate                time.Time `json:"due_date" db:"due_date"`
	Status                 Status    `json:"status" db:"status"`
	Currency               string    `json:"currency" db:"currency"`
	TaxEnabled             bool      `json:"tax_enabled" db:"tax_enabled"`
	DiscountType           string    `json:"discount_type" db:"discount_type"`
	DiscountValue          float64   `json:"discount_value" db:"discount_value"`
	Subtotal               float64   `json:"subtotal" db:"subtotal"`
	TotalTax               float64   `json:"total_tax" db:"total_tax"`
	TotalLineDiscount      float64   `json:"total_line_discount" db:"total_line_discount"`
	DocumentDiscountAmount float64   `json:"document_discount_amount" db:"document_discount_amount"`
	TotalDiscount          float64   `json:"total_discount" db:"total_discount"`
	GrandTotal             float64   `json:"grand_total" db:"grand_total"`
	Notes                  *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time `json:"updated_at" db:"updated_at"`
	Lines                  []Line    `json:"lines,omitempty" db:"-"`
}

type Line struct {
	ID              int64   `json:"id" db:"id"`
	DocumentID      int64   `json:"document_id" db:"document_id"`
	LineOrder       int     `json:"line_order" db:"line_order"`
	Name            string  `json:"name" db:"name"`
	Description     *string `json:"description,omitempty" db:"description"`
	Quantity        float64 `json:"quantity" db:"quantity"`
	UnitPrice       float64 `json:"unit_price" db:"unit_price"`
	DiscountPercent float64 `json:"discount_percent" db:"discount_percent"`
	TaxID           *int64  `json:"tax_id,omitempty" db:"tax_id"`
	TaxName         string  `json:"tax_name,omitempty" db:"tax_name"`
	TaxPercent      float64 `json:"tax_percent" db:"tax_percent"`
	Amount          float64 `json:"amount" db:"amount"`
	DiscountAmount  float64 `json:"discount_amount" db:"discount_amount"`
	TaxAmount       float64 `json:"tax_amount" db:"tax_amount"`
	LineTotal       float64 `json:"line_total" db:"line_total"`
}

// Editable reports whether the document content may still change.
func (d Document) Editable() bool {
	return d.Status == StatusDraft
}
