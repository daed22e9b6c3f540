package documents

import (
	"time"

	"github.com/odyssey-erp/odyssey-crm/internal/billing/form"
	"github.com/odyssey-erp/odyssey-crm/internal/billing/totals"
)

const dateLayout = "2006-01-02"

// DocumentRequest is the body of create and update calls. Updates replace the
// header and every line; the company cannot change after creation.
type DocumentRequest struct {
	CompanyID     int64           `json:"company_id" validate:"required,gt=0"`
	CustomerName  string          `json:"customer_name" validate:"required,max=200"`
	CustomerEmail *string         `json:"customer_email,omitempty" validate:"omitempty,email"`
	IssueDate     string          `json:"issue_date" validate:"required,datetime=2006-01-02"`
	DueDate       string          `json:"due_date" validate:"required,datetime=2006-01-02"`
	Currency      string          `json:"currency" validate:"required,len=3"`
	TaxEnabled    bool            `json:"tax_enabled"`
	Discount      DiscountRequest `json:"discount"`
	Notes         *string         `json:"notes,omitempty"`
	Lines         []LineRequest   `json:"lines" validate:"required,min=1,dive"`
}

type DiscountRequest struct {
	Type  totals.DiscountType `json:"type" validate:"omitempty,oneof=percentage fixed"`
	Value totals.Number       `json:"value" validate:"gte=0"`
}

type LineRequest struct {
	Name            string        `json:"name" validate:"required,max=200"`
	Description     string        `json:"description,omitempty"`
	Quantity        totals.Number `json:"quantity" validate:"gte=1"`
	UnitPrice       totals.Number `json:"unit_price" validate:"gte=0"`
	DiscountPercent totals.Number `json:"discount_percent" validate:"gte=0,lte=100"`
	TaxID           int64         `json:"tax_id,omitempty" validate:"gte=0"`
}

// ListRequest filters the document list of one company and kind.
type ListRequest struct {
	CompanyID int64
	Kind      Kind
	Status    *Status
	Search    string
	// From and To bound the issue date, both inclusive.
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// toInput maps the request onto the form state the calculator consumes.
func (r DocumentRequest) toInput() form.Input {
	in := form.Input{
		Lines:      make([]form.LineInput, len(r.Lines)),
		TaxEnabled: r.TaxEnabled,
		Discount:   form.DiscountInput{Type: r.Discount.Type, Value: r.Discount.Value},
	}
	for i, l := range r.Lines {
		in.Lines[i] = form.LineInput{
			Name:            l.Name,
			Description:     l.Description,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			TaxID:           l.TaxID,
		}
	}
	return in
}

// inputOf rebuilds the form input from a stored document.
func inputOf(doc Document) form.Input {
	in := form.Input{
		Lines:      make([]form.LineInput, len(doc.Lines)),
		TaxEnabled: doc.TaxEnabled,
		Discount: form.DiscountInput{
			Type:  totals.DiscountType(doc.DiscountType),
			Value: totals.Number(doc.DiscountValue),
		},
	}
	for i, l := range doc.Lines {
		li := form.LineInput{
			Name:            l.Name,
			Quantity:        totals.Number(l.Quantity),
			UnitPrice:       totals.Number(l.UnitPrice),
			DiscountPercent: totals.Number(l.DiscountPercent),
		}
		if l.Description != nil {
			li.Description = *l.Description
		}
		switch {
		case l.TaxID != nil:
			li.TaxID = *l.TaxID
		case l.TaxName != "" || l.TaxPercent != 0:
			// The tax was deleted; keep pricing with the stored snapshot.
			li.Tax = &totals.TaxRef{Name: l.TaxName, Percentage: l.TaxPercent}
		}
		in.Lines[i] = li
	}
	return in
}
