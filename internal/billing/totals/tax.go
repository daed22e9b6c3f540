package totals

// Tax is a reference tax rate offered in the line item tax dropdown.
type Tax struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// TaxList is the ordered tax reference list fetched once per form session.
type TaxList []Tax

// Find returns the tax with the given id. A miss is reported through the
// boolean only; callers treat it as "no tax".
func (l TaxList) Find(id int64) (Tax, bool) {
	for _, t := range l {
		if t.ID == id {
			return t, true
		}
	}
	return Tax{}, false
}

// Percentage returns the rate for id, or 0 when the id is unknown.
func (l TaxList) Percentage(id int64) float64 {
	t, ok := l.Find(id)
	if !ok {
		return 0
	}
	return finite(t.Percentage)
}

// TaxRef is the tax snapshot carried by a line item.
type TaxRef struct {
	ID         int64   `json:"id,omitempty"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// Resolve builds the TaxRef for id. The second return value is false when id
// is 0 or not present in the list.
func (l TaxList) Resolve(id int64) (*TaxRef, bool) {
	if id == 0 {
		return nil, false
	}
	t, ok := l.Find(id)
	if !ok {
		return nil, false
	}
	return &TaxRef{ID: t.ID, Name: t.Name, Percentage: t.Percentage}, true
}
