package form

import (
	"github.com/odyssey-erp/odyssey-crm/internal/billing/totals"
)

// Form is the editing session of a single invoice or proposal. It is owned by
// one editor and is not safe for concurrent use.
type Form struct {
	taxes   totals.TaxList
	input   Input
	derived Derived
}

// New starts a form session over an existing input. The tax list is the
// reference data fetched when the form was opened.
func New(taxes totals.TaxList, in Input) *Form {
	f := &Form{taxes: taxes, input: cloneInput(in)}
	f.sync()
	return f
}

// Snapshot returns the current input together with freshly derived values.
func (f *Form) Snapshot() Snapshot {
	return Snapshot{Input: cloneInput(f.input), Derived: cloneDerived(f.derived)}
}

// Input returns a copy of the user-entered state.
func (f *Form) Input() Input {
	return cloneInput(f.input)
}

func (f *Form) SetName(line int, name string) Snapshot {
	return f.editLine(line, func(l *LineInput) { l.Name = name })
}

func (f *Form) SetQuantity(line int, raw string) Snapshot {
	return f.editLine(line, func(l *LineInput) { l.Quantity = totals.Number(totals.ParseNumber(raw)) })
}

func (f *Form) SetUnitPrice(line int, raw string) Snapshot {
	return f.editLine(line, func(l *LineInput) { l.UnitPrice = totals.Number(totals.ParseNumber(raw)) })
}

func (f *Form) SetDiscountPercent(line int, raw string) Snapshot {
	return f.editLine(line, func(l *LineInput) { l.DiscountPercent = totals.Number(totals.ParseNumber(raw)) })
}

// SelectTax attaches a tax from the reference list; 0 clears it.
func (f *Form) SelectTax(line int, taxID int64) Snapshot {
	return f.editLine(line, func(l *LineInput) {
		l.TaxID = taxID
		l.Tax = nil
	})
}

func (f *Form) SetTaxEnabled(enabled bool) Snapshot {
	f.input.TaxEnabled = enabled
	return f.sync()
}

// AddLine appends an empty row with quantity 1.
func (f *Form) AddLine() Snapshot {
	f.input.Lines = append(f.input.Lines, LineInput{Quantity: 1})
	return f.sync()
}

// RemoveLine drops the row at index line. Out of range indexes are ignored.
func (f *Form) RemoveLine(line int) Snapshot {
	if line >= 0 && line < len(f.input.Lines) {
		f.input.Lines = append(f.input.Lines[:line:line], f.input.Lines[line+1:]...)
	}
	return f.sync()
}

func (f *Form) SetDocumentDiscount(kind totals.DiscountType, raw string) Snapshot {
	f.input.Discount = DiscountInput{Type: kind, Value: totals.Number(totals.ParseNumber(raw))}
	return f.sync()
}

func (f *Form) editLine(line int, edit func(*LineInput)) Snapshot {
	if line >= 0 && line < len(f.input.Lines) {
		edit(&f.input.Lines[line])
	}
	return f.sync()
}

// sync overwrites the derived state wholesale.
func (f *Form) sync() Snapshot {
	f.derived = Derive(f.input, f.taxes)
	return f.Snapshot()
}

func cloneInput(in Input) Input {
	out := in
	out.Lines = append([]LineInput(nil), in.Lines...)
	for i, l := range out.Lines {
		if l.Tax != nil {
			ref := *l.Tax
			out.Lines[i].Tax = &ref
		}
	}
	return out
}

func cloneDerived(d Derived) Derived {
	out := d
	out.Lines = make([]LineDerived, len(d.Lines))
	copy(out.Lines, d.Lines)
	out.Totals.Lines = make([]totals.LineAmounts, len(d.Totals.Lines))
	copy(out.Totals.Lines, d.Totals.Lines)
	return out
}
