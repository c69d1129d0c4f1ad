package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/petstore-client/internal/http"
	"github.com/fivetwenty-io/petstore-client/pkg/converge"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// StoreClient implements petstore.StoreClient.
type StoreClient struct {
	httpClient *http.Client
	executor   *converge.Executor
}

// NewStoreClient creates a new store client.
func NewStoreClient(httpClient *http.Client, executor *converge.Executor) *StoreClient {
	return &StoreClient{
		httpClient: httpClient,
		executor:   executor,
	}
}

func orderPath(id int64) string {
	return "/store/order/" + strconv.FormatInt(id, 10)
}

// Inventory implements petstore.StoreClient.Inventory.
func (c *StoreClient) Inventory(ctx context.Context) (petstore.Inventory, error) {
	resp, err := c.httpClient.Get(ctx, "/store/inventory", nil)
	if err != nil {
		return nil, fmt.Errorf("getting inventory: %w", err)
	}

	var inventory petstore.Inventory

	err = json.Unmarshal(resp.Body, &inventory)
	if err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}

	return inventory, nil
}

// PlaceOrder implements petstore.StoreClient.PlaceOrder.
func (c *StoreClient) PlaceOrder(ctx context.Context, order *petstore.Order) (*petstore.Order, error) {
	resp, err := c.httpClient.Post(ctx, "/store/order", order)
	if err != nil {
		return nil, fmt.Errorf("placing order: %w", err)
	}

	var placed petstore.Order

	err = json.Unmarshal(resp.Body, &placed)
	if err != nil {
		return nil, fmt.Errorf("parsing order response: %w", err)
	}

	return &placed, nil
}

// GetOrder implements petstore.StoreClient.GetOrder.
func (c *StoreClient) GetOrder(ctx context.Context, id int64) (*petstore.Order, error) {
	resp, err := c.httpClient.Get(ctx, orderPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}

	var order petstore.Order

	err = json.Unmarshal(resp.Body, &order)
	if err != nil {
		return nil, fmt.Errorf("parsing order: %w", err)
	}

	return &order, nil
}

// DeleteOrder implements petstore.StoreClient.DeleteOrder.
func (c *StoreClient) DeleteOrder(ctx context.Context, id int64) error {
	_, err := c.httpClient.Delete(ctx, orderPath(id))
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	return nil
}

// PlaceOrderUntilVisible implements petstore.StoreClient.PlaceOrderUntilVisible.
func (c *StoreClient) PlaceOrderUntilVisible(ctx context.Context, order *petstore.Order) (*petstore.Order, error) {
	res, err := c.executor.CreateUntilVisible(ctx, petstore.KindOrder, order, converge.Policy{})
	if err != nil {
		return nil, fmt.Errorf("placing order: %w", err)
	}

	var placed petstore.Order

	err = res.Decode(&placed)
	if err != nil {
		return nil, fmt.Errorf("parsing order: %w", err)
	}

	return &placed, nil
}

// DeleteOrderUntilAbsent implements petstore.StoreClient.DeleteOrderUntilAbsent.
func (c *StoreClient) DeleteOrderUntilAbsent(ctx context.Context, id int64) error {
	err := c.executor.DeleteUntilAbsent(ctx, petstore.OrderRef(id), converge.Policy{})
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	return nil
}
