package totals

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

var gst18 = &TaxRef{ID: 1, Name: "GST 18%", Percentage: 18}

func sampleLine() LineItem {
	return LineItem{Name: "Consulting", Quantity: 2, UnitPrice: 100, DiscountPercent: 10, Tax: gst18}
}

func TestComputeLineAmountsExample(t *testing.T) {
	got := ComputeLineAmounts(sampleLine(), true)

	assert.InDelta(t, 200, got.BaseAmount, eps)
	assert.InDelta(t, 20, got.DiscountAmount, eps)
	assert.InDelta(t, 180, got.AfterDiscount, eps)
	assert.InDelta(t, 32.4, got.TaxAmount, eps)
	assert.InDelta(t, 212.4, got.LineTotal, eps)
}

func TestComputeLineAmountsZeroQuantity(t *testing.T) {
	item := sampleLine()
	item.Quantity = 0

	got := ComputeLineAmounts(item, true)
	assert.Zero(t, got.LineTotal)
	assert.Zero(t, got.TaxAmount)
	assert.Zero(t, got.DiscountAmount)
}

func TestComputeLineAmountsIdempotent(t *testing.T) {
	item := sampleLine()
	assert.Equal(t, ComputeLineAmounts(item, true), ComputeLineAmounts(item, true))
	assert.Equal(t, ComputeLineAmounts(item, false), ComputeLineAmounts(item, false))
}

func TestComputeLineAmountsTaxDisabled(t *testing.T) {
	got := ComputeLineAmounts(sampleLine(), false)
	assert.Zero(t, got.TaxAmount)
	assert.Equal(t, got.AfterDiscount, got.LineTotal)
}

func TestComputeLineAmountsCoercesNonFinite(t *testing.T) {
	item := LineItem{
		Quantity:        math.NaN(),
		UnitPrice:       math.Inf(1),
		DiscountPercent: math.NaN(),
		Tax:             &TaxRef{Percentage: math.Inf(-1)},
	}
	got := ComputeLineAmounts(item, true)
	assert.Equal(t, LineAmounts{}, got)
}

func TestComputeLineAmountsNegativeInputIsNotClamped(t *testing.T) {
	got := ComputeLineAmounts(LineItem{Quantity: -1, UnitPrice: 50}, false)
	assert.InDelta(t, -50, got.LineTotal, eps)
}

func TestComputeTotalsTwoLines(t *testing.T) {
	got := ComputeTotals([]LineItem{sampleLine(), sampleLine()}, true, DocumentDiscount{})

	require.Len(t, got.Lines, 2)
	assert.InDelta(t, 360, got.Subtotal, eps)
	assert.InDelta(t, 64.8, got.TotalTax, eps)
	assert.InDelta(t, 40, got.TotalLineDiscount, eps)
	assert.Zero(t, got.DocumentDiscountAmount)
	assert.InDelta(t, 424.8, got.GrandTotal, eps)
}

func TestComputeTotalsPercentageDiscount(t *testing.T) {
	got := ComputeTotals([]LineItem{sampleLine(), sampleLine()}, true, DocumentDiscount{Type: DiscountPercentage, Value: 10})

	assert.InDelta(t, 36, got.DocumentDiscountAmount, eps)
	assert.InDelta(t, 388.8, got.GrandTotal, eps)
	assert.InDelta(t, 76, got.TotalDiscount, eps)
}

func TestComputeTotalsFixedDiscount(t *testing.T) {
	small := ComputeTotals([]LineItem{sampleLine()}, true, DocumentDiscount{Type: DiscountFixed, Value: 50})
	large := ComputeTotals([]LineItem{{Quantity: 1000, UnitPrice: 999}}, true, DocumentDiscount{Type: DiscountFixed, Value: 50})

	assert.InDelta(t, 50, small.DocumentDiscountAmount, eps)
	assert.InDelta(t, 50, large.DocumentDiscountAmount, eps)
}

func TestComputeTotalsUnknownDiscountType(t *testing.T) {
	got := ComputeTotals([]LineItem{sampleLine()}, true, DocumentDiscount{Type: "bogus", Value: 99})
	assert.Zero(t, got.DocumentDiscountAmount)
}

func TestComputeTotalsEmpty(t *testing.T) {
	got := ComputeTotals(nil, true, DocumentDiscount{Type: DiscountPercentage, Value: 10})
	assert.Empty(t, got.Lines)
	assert.Zero(t, got.GrandTotal)
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	a := LineItem{Quantity: 3, UnitPrice: 12.5, DiscountPercent: 5, Tax: gst18}
	b := LineItem{Quantity: 1, UnitPrice: 80, Tax: &TaxRef{Percentage: 5}}

	forward := ComputeTotals([]LineItem{a, b}, true, DocumentDiscount{Type: DiscountPercentage, Value: 2})
	backward := ComputeTotals([]LineItem{b, a}, true, DocumentDiscount{Type: DiscountPercentage, Value: 2})

	assert.InDelta(t, forward.GrandTotal, backward.GrandTotal, eps)
	assert.InDelta(t, forward.Subtotal, backward.Subtotal, eps)
}

func TestComputeTotalsGrandTotalInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		items := make([]LineItem, rng.Intn(8))
		for j := range items {
			items[j] = LineItem{
				Quantity:        float64(rng.Intn(50)),
				UnitPrice:       math.Round(rng.Float64()*100000) / 100,
				DiscountPercent: float64(rng.Intn(101)),
				Tax:             &TaxRef{Percentage: float64(rng.Intn(31))},
			}
		}
		discount := DocumentDiscount{Type: DiscountPercentage, Value: float64(rng.Intn(101))}
		if rng.Intn(2) == 0 {
			discount = DocumentDiscount{Type: DiscountFixed, Value: float64(rng.Intn(500))}
		}
		taxEnabled := rng.Intn(2) == 0

		got := ComputeTotals(items, taxEnabled, discount)

		var subtotal, lineTax float64
		for _, l := range got.Lines {
			subtotal += l.LineTotal - l.TaxAmount
			lineTax += l.TaxAmount
		}
		require.InDelta(t, got.Subtotal-got.DocumentDiscountAmount+got.TotalTax, got.GrandTotal, 1e-6)
		require.InDelta(t, subtotal, got.Subtotal, 1e-6)
		require.InDelta(t, lineTax, got.TotalTax, 1e-6)
		if !taxEnabled {
			require.Zero(t, got.TotalTax)
		}
	}
}

func TestRounded(t *testing.T) {
	got := ComputeTotals([]LineItem{{Quantity: 3, UnitPrice: 0.1, Tax: &TaxRef{Percentage: 7.5}}}, true, DocumentDiscount{}).Rounded()

	assert.Equal(t, 0.3, got.Subtotal)
	assert.Equal(t, 0.02, got.TotalTax)
	assert.Equal(t, 0.32, got.GrandTotal)
	assert.Equal(t, 0.3, got.Lines[0].AfterDiscount)
	assert.Equal(t, 1.01, Round2(1.005))
}

func TestRoundedGrandTotalFromRoundedParts(t *testing.T) {
	got := ComputeTotals([]LineItem{{Quantity: 1, UnitPrice: 0.045, Tax: gst18}}, true, DocumentDiscount{}).Rounded()

	assert.Equal(t, 0.05, got.Subtotal)
	assert.Equal(t, 0.01, got.TotalTax)
	assert.Equal(t, 0.06, got.GrandTotal)
}

func TestTaxListFind(t *testing.T) {
	list := TaxList{{ID: 1, Name: "GST 18%", Percentage: 18}, {ID: 2, Name: "VAT 5%", Percentage: 5}}

	tax, ok := list.Find(2)
	require.True(t, ok)
	assert.Equal(t, "VAT 5%", tax.Name)

	_, ok = list.Find(99)
	assert.False(t, ok)
	assert.Zero(t, list.Percentage(99))

	ref, ok := list.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, 18.0, ref.Percentage)

	_, ok = list.Resolve(0)
	assert.False(t, ok)
}

func TestNumberUnmarshal(t *testing.T) {
	var payload struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
		E Number `json:"e"`
		F Number `json:"f"`
	}
	err := json.Unmarshal([]byte(`{"a": 12.5, "b": "7", "c": null, "d": "abc", "e": "", "f": true}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, 12.5, payload.A.Float64())
	assert.Equal(t, 7.0, payload.B.Float64())
	assert.Zero(t, payload.C.Float64())
	assert.Zero(t, payload.D.Float64())
	assert.Zero(t, payload.E.Float64())
	assert.Zero(t, payload.F.Float64())
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 3.25, ParseNumber(" 3.25 "))
	assert.Zero(t, ParseNumber("NaN"))
	assert.Zero(t, ParseNumber("Inf"))
	assert.Zero(t, ParseNumber("1,000"))
}
