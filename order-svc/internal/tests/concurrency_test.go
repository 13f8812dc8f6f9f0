package tests

import (
	"sync"
	"testing"

	"opendfood/order-svc/internal/domain"
	"opendfood/order-svc/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_ConcurrentOrdersGetDistinctNumbers(t *testing.T) {
	store := seededStore()
	orders, _ := newOrderStack(store)
	tenant := store.restaurants[1]

	const n = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			order, err := orders.Submit(ctx, tenant, service.SubmitRequest{
				TableToken: bistroTable.String(),
				OrderType:  "dine_in",
				Items:      []domain.LineRequest{{MenuItemID: 1, Quantity: qty}, {MenuItemID: 2, Quantity: 1}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[order.OrderNumber] = true

			want := dec("8.00").Mul(decimalFromInt(qty)).Add(dec("3.50"))
			assert.True(t, order.Subtotal.Equal(want), "subtotal %s, want %s", order.Subtotal, want)
			assert.True(t, order.Total.Equal(order.Subtotal.Add(order.Tax)))
		}(i%3 + 1)
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, numbers, n)
	assert.Equal(t, n, store.orderCount())
}

func TestSubmit_SameTableTwiceMakesTwoOrders(t *testing.T) {
	store := seededStore()
	orders, _ := newOrderStack(store)
	tenant := store.restaurants[1]

	results := make([]*domain.Order, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := orders.Submit(ctx, tenant, service.SubmitRequest{
				TableToken: bistroTable.String(),
				OrderType:  "dine_in",
				Items:      []domain.LineRequest{{MenuItemID: 1, Quantity: 1}},
			})
			assert.NoError(t, err)
			results[i] = order
		}(i)
	}
	wg.Wait()

	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.NotEqual(t, results[0].ID, results[1].ID)
	assert.NotEqual(t, results[0].OrderNumber, results[1].OrderNumber)
	assert.Equal(t, *results[0].TableID, *results[1].TableID)
}

func TestSubmit_CollidingNumbersAreRetried(t *testing.T) {
	store := seededStore()
	numbers := []string{"ORD-00000001", "ORD-00000001", "ORD-00000002"}
	var (
		mu   sync.Mutex
		next int
	)
	gen := func() string {
		mu.Lock()
		defer mu.Unlock()
		n := numbers[next]
		next++
		return n
	}
	orders, _ := newOrderStack(store, service.WithOrderNumbers(gen))
	tenant := store.restaurants[1]
	req := service.SubmitRequest{
		TableToken: bistroTable.String(),
		OrderType:  "takeaway",
		Items:      []domain.LineRequest{{MenuItemID: 2, Quantity: 2}},
	}

	first, err := orders.Submit(ctx, tenant, req)
	require.NoError(t, err)
	second, err := orders.Submit(ctx, tenant, req)
	require.NoError(t, err)

	assert.Equal(t, "ORD-00000001", first.OrderNumber)
	assert.Equal(t, "ORD-00000002", second.OrderNumber)
	assert.Equal(t, "7.70", second.Total.StringFixed(2))
}

func TestSubmit_CrossTenantIsolation(t *testing.T) {
	store := seededStore()
	orders, tables := newOrderStack(store)
	bistroTenant := store.restaurants[1]

	t.Run("another tenant's table token", func(t *testing.T) {
		_, err := tables.ResolveTable(ctx, bistroTenant, pizzaTable.String())
		assert.ErrorIs(t, err, domain.ErrTableNotFound)
	})

	t.Run("another tenant's menu item", func(t *testing.T) {
		_, err := orders.Submit(ctx, bistroTenant, service.SubmitRequest{
			TableToken: bistroTable.String(),
			OrderType:  "dine_in",
			Items:      []domain.LineRequest{{MenuItemID: 10, Quantity: 1}},
		})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
		assert.Equal(t, 0, store.orderCount())
	})

	t.Run("another tenant's order", func(t *testing.T) {
		pizzaOrders, _ := newOrderStack(store)
		order, err := pizzaOrders.Submit(ctx, store.restaurants[2], service.SubmitRequest{
			TableToken: pizzaTable.String(),
			OrderType:  "dine_in",
			Items:      []domain.LineRequest{{MenuItemID: 10, Quantity: 1}},
		})
		require.NoError(t, err)

		_, err = orders.Get(ctx, bistroTenant, order.ID)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
		_, err = orders.ChangeStatus(ctx, bistroTenant, order.ID, "confirmed")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestUpdateLines_KeepsSnapshotPrices(t *testing.T) {
	store := seededStore()
	orders, _ := newOrderStack(store)
	tenant := store.restaurants[1]

	order, err := orders.Submit(ctx, tenant, service.SubmitRequest{
		TableToken: bistroTable.String(),
		OrderType:  "dine_in",
		Items:      []domain.LineRequest{{MenuItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	// Price change after the order was placed.
	burgerItem := store.items[1]
	burgerItem.DiscountPrice = nil
	store.addItem(burgerItem)

	updated, err := orders.UpdateLines(ctx, tenant, order.ID, []domain.LineEdit{
		{LineID: order.Items[0].ID, MenuItemID: 1, Quantity: 2},
		{MenuItemID: 1, Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 2)
	assert.Equal(t, "8.00", updated.Items[0].Price.StringFixed(2))
	assert.Equal(t, "10.00", updated.Items[1].Price.StringFixed(2))
	assert.Equal(t, "26.00", updated.Subtotal.StringFixed(2))
	assert.Equal(t, "28.60", updated.Total.StringFixed(2))
}
