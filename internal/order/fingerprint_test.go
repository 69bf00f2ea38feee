package order

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(products ...Product) Order {
	return Order{
		ID:           "O1",
		Status:       StatusPending,
		CustomerName: "Mafer",
		Table:        "5",
		Products:     products,
		Total:        decimal.NewFromInt(12000),
	}
}

func TestFingerprintOf_SortedByName(t *testing.T) {
	o := testOrder(
		Product{Name: "pan", Quantity: 2, Price: decimal.NewFromInt(1000)},
		Product{Name: "chorizo", Quantity: 2, Price: decimal.NewFromInt(5000)},
	)

	fp := FingerprintOf(o)
	require.Len(t, fp, 2)
	assert.Equal(t, Line{Name: "chorizo", Quantity: 2}, fp[0])
	assert.Equal(t, Line{Name: "pan", Quantity: 2}, fp[1])
}

func TestFingerprintOf_PermutationStable(t *testing.T) {
	a := Product{Name: "chorizo", Quantity: 2, Price: decimal.NewFromInt(5000)}
	b := Product{Name: "pan", Quantity: 2, Price: decimal.NewFromInt(1000)}
	c := Product{Name: "arepa", Quantity: 1, Price: decimal.NewFromInt(3000)}

	perms := [][]Product{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}

	want := FingerprintOf(testOrder(perms[0]...))
	for _, perm := range perms[1:] {
		got := FingerprintOf(testOrder(perm...))
		assert.True(t, want.Equal(got), "fingerprint must be identical for all product orderings")
	}
}

func TestFingerprintOf_PriceExcluded(t *testing.T) {
	cheap := testOrder(
		Product{Name: "chorizo", Quantity: 2, Price: decimal.NewFromInt(5000)},
		Product{Name: "pan", Quantity: 2, Price: decimal.NewFromInt(1000)},
	)
	pricey := testOrder(
		Product{Name: "chorizo", Quantity: 2, Price: decimal.NewFromInt(6000)},
		Product{Name: "pan", Quantity: 2, Price: decimal.NewFromFloat(1000.50)},
	)

	// Documented quirk: a price-only edit is invisible to change detection.
	assert.True(t, FingerprintOf(cheap).Equal(FingerprintOf(pricey)))
}

func TestFingerprintOf_QuantityChangeDetected(t *testing.T) {
	before := testOrder(Product{Name: "chorizo", Quantity: 2, Price: decimal.NewFromInt(5000)})
	after := testOrder(Product{Name: "chorizo", Quantity: 3, Price: decimal.NewFromInt(5000)})

	assert.False(t, FingerprintOf(before).Equal(FingerprintOf(after)))
}

func TestFingerprintOf_NFCNormalization(t *testing.T) {
	// "café" composed (U+00E9) vs decomposed (e + U+0301)
	composed := testOrder(Product{Name: "café", Quantity: 1})
	decomposed := testOrder(Product{Name: "café", Quantity: 1})

	assert.True(t, FingerprintOf(composed).Equal(FingerprintOf(decomposed)),
		"canonically equal names must fingerprint identically")
}

func TestFingerprintOf_SameNameDifferentQuantity(t *testing.T) {
	o := testOrder(
		Product{Name: "pan", Quantity: 3},
		Product{Name: "pan", Quantity: 1},
	)

	fp := FingerprintOf(o)
	require.Len(t, fp, 2)
	assert.Equal(t, 1, fp[0].Quantity, "ties on name sort by quantity")
	assert.Equal(t, 3, fp[1].Quantity)
}

func TestLine_JSONRoundTrip(t *testing.T) {
	fp := Fingerprint{{Name: "chorizo", Quantity: 2}, {Name: "pan", Quantity: 2}}

	data, err := json.Marshal(fp)
	require.NoError(t, err)
	assert.JSONEq(t, `[["chorizo",2],["pan",2]]`, string(data))

	var back Fingerprint
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, fp.Equal(back))
}

func TestLine_UnmarshalRejectsWrongShape(t *testing.T) {
	var l Line
	assert.Error(t, json.Unmarshal([]byte(`["pan"]`), &l))
	assert.Error(t, json.Unmarshal([]byte(`"pan"`), &l))
	assert.Error(t, json.Unmarshal([]byte(`[2,"pan"]`), &l))
}
