package taxes

import (
	"time"

	"github.com/odyssey-erp/odyssey-crm/internal/billing/totals"
)

// Tax represents a tax configuration
type Tax struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Rate      float64   `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reference converts the tax into calculator reference data.
func (t Tax) Reference() totals.Tax {
	return totals.Tax{ID: t.ID, Name: t.Name, Percentage: t.Rate}
}

// TaxRequest is the JSON body for create and update.
type TaxRequest struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

func (r TaxRequest) toTax() Tax {
	return Tax{Code: r.Code, Name: r.Name, Rate: r.Rate}
}
