package client_test

import (
	"context"
	"net/http"
	"testing"

	. "github.com/fivetwenty-io/petstore-client/internal/client"
	"github.com/fivetwenty-io/petstore-client/internal/fakestore"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreClient_OrderLifecycle(t *testing.T) {
	t.Parallel()

	store := fakestore.New(fakestore.WithLag(1), fakestore.WithStartID(500))
	defer store.Close()

	orders := NewTestClient(t, store.BaseURL()).Store()
	ctx := context.Background()

	placed, err := orders.PlaceOrderUntilVisible(ctx, &petstore.Order{PetID: 10, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(500), placed.ID)
	assert.Equal(t, petstore.OrderStatusPlaced, placed.Status)

	fetched, err := orders.GetOrder(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.Quantity)

	require.NoError(t, orders.DeleteOrderUntilAbsent(ctx, placed.ID))
	require.NoError(t, orders.DeleteOrderUntilAbsent(ctx, placed.ID))

	_, err = orders.GetOrder(ctx, placed.ID)
	assert.True(t, petstore.IsNotFound(err))
	assert.Equal(t, 1, store.Count(http.MethodPost, "/store/order"))
}

func TestStoreClient_Inventory(t *testing.T) {
	t.Parallel()

	store := fakestore.New()
	defer store.Close()

	store.SeedPet(petstore.Pet{Name: "a", Status: petstore.PetStatusAvailable})
	store.SeedPet(petstore.Pet{Name: "b", Status: petstore.PetStatusPending})

	inventory, err := NewTestClient(t, store.BaseURL()).Store().Inventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inventory["available"])
	assert.Equal(t, 1, inventory["pending"])
}

func TestStoreClient_GetOrder(t *testing.T) {
	t.Parallel()

	tests := []TestGetOperation[petstore.Order]{
		{
			Name:         "existing order",
			ID:           5,
			ExpectedPath: "/store/order/5",
			StatusCode:   http.StatusOK,
			Response:     petstore.Order{ID: 5, PetID: 1, Quantity: 1, Status: petstore.OrderStatusApproved},
		},
		{
			Name:         "missing order",
			ID:           6,
			ExpectedPath: "/store/order/6",
			StatusCode:   http.StatusNotFound,
			Response:     petstore.APIResponse{Code: 1, Type: "error", Message: "Order not found"},
			WantErr:      true,
			ErrMessage:   "Order not found",
		},
		{
			Name:         "invalid id",
			ID:           -1,
			ExpectedPath: "/store/order/-1",
			StatusCode:   http.StatusBadRequest,
			Response:     petstore.APIResponse{Code: 400, Type: "error", Message: "Invalid ID supplied"},
			WantErr:      true,
			ErrMessage:   "status: 400",
		},
	}

	RunGetTests(t, tests, func(c *Client) func(context.Context, int64) (*petstore.Order, error) {
		return c.Store().GetOrder
	})
}

func TestStoreClient_DeleteOrder(t *testing.T) {
	t.Parallel()

	tests := []TestDeleteOperation{
		{Name: "existing order", ID: 1, ExpectedPath: "/store/order/1", StatusCode: http.StatusOK},
		{Name: "server error", ID: 2, ExpectedPath: "/store/order/2", StatusCode: http.StatusInternalServerError, WantErr: true, ErrMessage: "deleting order"},
	}

	RunDeleteTests(t, tests, func(c *Client) func(context.Context, int64) error {
		return c.Store().DeleteOrder
	})
}
