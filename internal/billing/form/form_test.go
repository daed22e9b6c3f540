package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-crm/internal/billing/totals"
)

const eps = 1e-9

var taxes = totals.TaxList{
	{ID: 1, Name: "GST 18%", Percentage: 18},
	{ID: 2, Name: "VAT 5%", Percentage: 5},
}

func newSampleForm() *Form {
	return New(taxes, Input{
		TaxEnabled: true,
		Lines: []LineInput{
			{Name: "Consulting", Quantity: 2, UnitPrice: 100, DiscountPercent: 10, TaxID: 1},
		},
	})
}

func TestNewDerivesImmediately(t *testing.T) {
	snap := newSampleForm().Snapshot()

	require.Len(t, snap.Derived.Lines, 1)
	line := snap.Derived.Lines[0]
	assert.InDelta(t, 180, line.Amount, eps)
	assert.InDelta(t, 20, line.DiscountAmount, eps)
	assert.InDelta(t, 32.4, line.TaxAmount, eps)
	assert.Equal(t, "GST 18%", line.TaxName)
	assert.InDelta(t, 212.4, snap.Derived.Totals.GrandTotal, eps)
}

func TestEditsRecompute(t *testing.T) {
	f := newSampleForm()

	snap := f.AddLine()
	require.Len(t, snap.Input.Lines, 2)
	assert.Equal(t, totals.Number(1), snap.Input.Lines[1].Quantity)

	f.SetName(1, "Consulting")
	f.SetQuantity(1, "2")
	f.SetUnitPrice(1, "100")
	f.SetDiscountPercent(1, "10")
	snap = f.SelectTax(1, 1)
	assert.InDelta(t, 360, snap.Derived.Totals.Subtotal, eps)
	assert.InDelta(t, 64.8, snap.Derived.Totals.TotalTax, eps)
	assert.InDelta(t, 424.8, snap.Derived.Totals.GrandTotal, eps)

	snap = f.SetDocumentDiscount(totals.DiscountPercentage, "10")
	assert.InDelta(t, 36, snap.Derived.Totals.DocumentDiscountAmount, eps)
	assert.InDelta(t, 388.8, snap.Derived.Totals.GrandTotal, eps)

	snap = f.SetDocumentDiscount(totals.DiscountFixed, "50")
	assert.InDelta(t, 50, snap.Derived.Totals.DocumentDiscountAmount, eps)
}

func TestToggleTaxOverwritesDerivedValues(t *testing.T) {
	f := newSampleForm()

	snap := f.SetTaxEnabled(false)
	assert.Zero(t, snap.Derived.Lines[0].TaxAmount)
	assert.InDelta(t, 180, snap.Derived.Lines[0].LineTotal, eps)
	assert.Zero(t, snap.Derived.Totals.TotalTax)

	snap = f.SetTaxEnabled(true)
	assert.InDelta(t, 32.4, snap.Derived.Lines[0].TaxAmount, eps)
}

func TestMalformedInputCoercesToZero(t *testing.T) {
	f := newSampleForm()

	snap := f.SetQuantity(0, "two")
	assert.Zero(t, snap.Input.Lines[0].Quantity)
	assert.Zero(t, snap.Derived.Lines[0].LineTotal)
	assert.Zero(t, snap.Derived.Totals.GrandTotal)
}

func TestUnknownTaxIsNoTax(t *testing.T) {
	snap := newSampleForm().SelectTax(0, 42)

	assert.Zero(t, snap.Derived.Lines[0].TaxAmount)
	assert.Empty(t, snap.Derived.Lines[0].TaxName)
}

func TestInlineTaxPairWinsOverID(t *testing.T) {
	f := New(taxes, Input{
		TaxEnabled: true,
		Lines: []LineInput{
			{Name: "Import", Quantity: 1, UnitPrice: 100, TaxID: 1, Tax: &totals.TaxRef{Name: "Duty", Percentage: 12}},
		},
	})

	snap := f.Snapshot()
	assert.InDelta(t, 12, snap.Derived.Lines[0].TaxAmount, eps)
	assert.Equal(t, "Duty", snap.Derived.Lines[0].TaxName)

	snap = f.SelectTax(0, 2)
	assert.Nil(t, snap.Input.Lines[0].Tax)
	assert.InDelta(t, 5, snap.Derived.Lines[0].TaxAmount, eps)
}

func TestRemoveLineAndOutOfRange(t *testing.T) {
	f := newSampleForm()
	f.AddLine()

	snap := f.RemoveLine(0)
	require.Len(t, snap.Input.Lines, 1)
	assert.Empty(t, snap.Input.Lines[0].Name)

	snap = f.RemoveLine(7)
	assert.Len(t, snap.Input.Lines, 1)

	snap = f.SetQuantity(-1, "5")
	assert.Equal(t, totals.Number(1), snap.Input.Lines[0].Quantity)
}

func TestSnapshotIsDetached(t *testing.T) {
	f := newSampleForm()
	snap := f.Snapshot()
	snap.Input.Lines[0].Name = "changed"
	snap.Derived.Lines[0].LineTotal = -1
	snap.Derived.Totals.Lines[0].TaxAmount = -1

	assert.Equal(t, "Consulting", f.Input().Lines[0].Name)
	again := f.Snapshot()
	assert.InDelta(t, 212.4, again.Derived.Lines[0].LineTotal, eps)
	assert.InDelta(t, 32.4, again.Derived.Totals.Lines[0].TaxAmount, eps)
}

func TestPayloadRoundsAtBoundary(t *testing.T) {
	f := New(taxes, Input{
		TaxEnabled: true,
		Lines:      []LineInput{{Name: "Widget", Quantity: 3, UnitPrice: 0.333, TaxID: 2}},
	})

	p := f.Payload()
	require.Len(t, p.Lines, 1)
	assert.Equal(t, 1.0, p.Lines[0].Amount)
	assert.Equal(t, 0.05, p.Lines[0].TaxAmount)
	assert.Equal(t, "VAT 5%", p.Lines[0].TaxName)
	assert.Equal(t, 1.0, p.Subtotal)
	assert.Equal(t, 1.05, p.GrandTotal)
	assert.True(t, p.TaxEnabled)
}

func TestPayloadTotalsAddUp(t *testing.T) {
	discounts := []DiscountInput{
		{},
		{Type: totals.DiscountPercentage, Value: 7.5},
		{Type: totals.DiscountFixed, Value: 0.125},
	}
	for _, discount := range discounts {
		for qty := 1; qty < 50; qty++ {
			for cents := 15; cents <= 2005; cents += 10 {
				price := float64(cents) / 1000
				p := New(taxes, Input{
					TaxEnabled: true,
					Discount:   discount,
					Lines:      []LineInput{{Name: "Item", Quantity: totals.Number(qty), UnitPrice: totals.Number(price), TaxID: 1}},
				}).Payload()

				want := p.Subtotal - p.DocumentDiscountAmount + p.TotalTax
				require.InDelta(t, want, p.GrandTotal, 1e-9, "qty=%d price=%v discount=%v", qty, price, discount)
				require.InDelta(t, p.TotalLineDiscount+p.DocumentDiscountAmount, p.TotalDiscount, 1e-9)
			}
		}
	}
}
