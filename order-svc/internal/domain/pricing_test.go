package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func catalog() map[int]MenuItem {
	return map[int]MenuItem{
		1: {ID: 1, Name: "Burger", Price: dec("10.00"), DiscountPrice: decPtr("8.00"), IsAvailable: true},
		2: {ID: 2, Name: "Fries", Price: dec("3.50"), IsAvailable: true},
		3: {ID: 3, Name: "Soup", Price: dec("6.00"), IsAvailable: false},
		4: {ID: 4, Name: "Coffee", Price: dec("1.33"), IsAvailable: true},
	}
}

func TestPriceOrder_BurgerScenario(t *testing.T) {
	order := &Order{}
	err := PriceOrder(order, []LineRequest{{MenuItemID: 1, Quantity: 2}}, catalog(), dec("0.10"))
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Price.Equal(dec("8.00")))
	assert.Equal(t, "16.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "1.60", order.Tax.StringFixed(2))
	assert.Equal(t, "17.60", order.Total.StringFixed(2))
}

func TestPriceOrder_TotalsIdentity(t *testing.T) {
	rates := []string{"0", "0.10", "0.055", "0.2", "0.0725"}
	lines := [][]LineRequest{
		{{MenuItemID: 4, Quantity: 1}},
		{{MenuItemID: 4, Quantity: 7}, {MenuItemID: 2, Quantity: 3}},
		{{MenuItemID: 1, Quantity: 1}, {MenuItemID: 2, Quantity: 1}, {MenuItemID: 4, Quantity: 13}},
	}

	for _, rate := range rates {
		for _, set := range lines {
			order := &Order{}
			require.NoError(t, PriceOrder(order, set, catalog(), dec(rate)))

			sum := decimal.Zero
			for _, it := range order.Items {
				sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			}
			assert.True(t, order.Subtotal.Equal(sum), "subtotal for rate %s", rate)
			assert.True(t, order.Total.Equal(order.Subtotal.Add(order.Tax)), "total for rate %s", rate)
			assert.LessOrEqual(t, -order.Tax.Exponent(), int32(2))
		}
	}
}

func TestPriceOrder_TaxRoundsHalfAwayFromZero(t *testing.T) {
	order := &Order{}
	// 1.33 * 0.075 = 0.09975
	require.NoError(t, PriceOrder(order, []LineRequest{{MenuItemID: 4, Quantity: 1}}, catalog(), dec("0.075")))
	assert.Equal(t, "0.10", order.Tax.StringFixed(2))
	assert.Equal(t, "1.43", order.Total.StringFixed(2))
}

func TestPriceOrder_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		lines     []LineRequest
		wantErr   error
		wantIndex int
	}{
		{"empty", nil, ErrEmptyOrder, -1},
		{"zero quantity", []LineRequest{{MenuItemID: 1, Quantity: 0}}, ErrInvalidQuantity, 0},
		{"negative quantity", []LineRequest{{MenuItemID: 2, Quantity: 1}, {MenuItemID: 1, Quantity: -3}}, ErrInvalidQuantity, 1},
		{"quantity above limit", []LineRequest{{MenuItemID: 2, Quantity: MaxLineQuantity + 1}}, ErrInvalidQuantity, 0},
		{"unknown item", []LineRequest{{MenuItemID: 1, Quantity: 1}, {MenuItemID: 99, Quantity: 1}}, ErrItemNotFound, 1},
		{"unavailable item", []LineRequest{{MenuItemID: 3, Quantity: 1}}, ErrItemUnavailable, 0},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			order := &Order{}
			err := PriceOrder(order, testCase.lines, catalog(), dec("0.10"))

			assert.ErrorIs(t, err, testCase.wantErr)
			assert.Empty(t, order.Items)
			assert.True(t, order.Total.IsZero())

			var lineErr *LineError
			if testCase.wantIndex >= 0 {
				require.True(t, errors.As(err, &lineErr))
				assert.Equal(t, testCase.wantIndex, lineErr.Index)
				assert.Equal(t, testCase.lines[testCase.wantIndex].MenuItemID, lineErr.MenuItemID)
			} else {
				assert.False(t, errors.As(err, &lineErr))
			}
		})
	}
}

func TestRecalculate_UsesSnapshotPrices(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{MenuItemID: 1, Quantity: 2, Price: dec("8.00")},
		{MenuItemID: 2, Quantity: 1, Price: dec("3.50")},
	}}
	Recalculate(order, dec("0.10"))
	assert.Equal(t, "19.50", order.Subtotal.StringFixed(2))
	assert.Equal(t, "1.95", order.Tax.StringFixed(2))
	assert.Equal(t, "21.45", order.Total.StringFixed(2))

	order.Items = order.Items[:1]
	Recalculate(order, dec("0.10"))
	assert.Equal(t, "17.60", order.Total.StringFixed(2))
}

func TestApplyLineEdits(t *testing.T) {
	current := []OrderItem{
		{ID: 10, MenuItemID: 1, Name: "Burger", Quantity: 1, Price: dec("9.00")},
		{ID: 11, MenuItemID: 2, Name: "Fries", Quantity: 1, Price: dec("3.50")},
	}

	out, err := ApplyLineEdits(current, []LineEdit{
		{LineID: 10, MenuItemID: 1, Quantity: 3},
		{MenuItemID: 1, Quantity: 1},
	}, catalog())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, 10, out[0].ID)
	assert.Equal(t, 3, out[0].Quantity)
	assert.True(t, out[0].Price.Equal(dec("9.00")), "existing line keeps its snapshot")
	assert.Zero(t, out[1].ID)
	assert.True(t, out[1].Price.Equal(dec("8.00")), "new line snapshots current price")

	_, err = ApplyLineEdits(current, nil, catalog())
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = ApplyLineEdits(current, []LineEdit{{LineID: 99, MenuItemID: 1, Quantity: 1}}, catalog())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ApplyLineEdits(current, []LineEdit{{MenuItemID: 3, Quantity: 1}}, catalog())
	assert.ErrorIs(t, err, ErrItemUnavailable)

	_, err = ApplyLineEdits(current, []LineEdit{{LineID: 10, Quantity: 0}}, catalog())
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = ApplyLineEdits(current, []LineEdit{{LineID: 10, Quantity: 100000}}, catalog())
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPriceOrder_TotalMustFitStorage(t *testing.T) {
	items := map[int]MenuItem{
		7: {ID: 7, Name: "Caviar tower", Price: dec("99999.99"), IsAvailable: true},
	}

	order := &Order{}
	err := PriceOrder(order, []LineRequest{{MenuItemID: 7, Quantity: MaxLineQuantity}}, items, dec("0.10"))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, order.Items)
	assert.True(t, order.Total.IsZero())

	require.NoError(t, PriceOrder(order, []LineRequest{{MenuItemID: 7, Quantity: 10}}, items, dec("0.10")))
	assert.Equal(t, "1099999.89", order.Total.StringFixed(2))

	assert.NoError(t, CheckTotals([]OrderItem{{Quantity: 1, Price: MaxOrderTotal}}, decimal.Zero))
	assert.Error(t, CheckTotals([]OrderItem{{Quantity: 1, Price: MaxOrderTotal}}, dec("0.01")))
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(1760), Cents(dec("17.60")))
	assert.Equal(t, int64(1), Cents(dec("0.005")))
}
