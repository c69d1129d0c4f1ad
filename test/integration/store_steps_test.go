//go:build integration

package integration

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

func (w *world) registerStoreSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I have an order with the following details:$`, w.haveOrderWithDetails)
	sc.Step(`^I place the order$`, w.placeOrder)
	sc.Step(`^the order should be placed successfully$`, w.orderShouldBePlaced)
	sc.Step(`^I get the order by ID$`, w.getOrder)
	sc.Step(`^the order details should be returned correctly$`, w.orderDetailsShouldMatch)
	sc.Step(`^I delete the order$`, w.deleteOrder)
	sc.Step(`^the order should not be found$`, w.orderShouldNotBeFound)
	sc.Step(`^I get the store inventory$`, w.getInventory)
	sc.Step(`^the inventory should be returned$`, w.inventoryShouldBeReturned)
	sc.Step(`^the inventory should contain available pets$`, w.inventoryShouldContainAvailable)
	sc.Step(`^an order with ID (\d+) does not exist$`, w.orderDoesNotExist)
	sc.Step(`^I attempt to retrieve the order with ID (\d+)$`, w.attemptRetrieveOrder)
}

func (w *world) haveOrderWithDetails(table *godog.Table) error {
	values := rowsToMap(table)
	order := w.generator.RandomOrder(w.generator.RandomID())

	if quantity, ok := values["quantity"]; ok {
		n, err := strconv.Atoi(quantity)
		if err != nil {
			return fmt.Errorf("parsing quantity: %w", err)
		}

		order.Quantity = n
	}

	if status, ok := values["status"]; ok {
		order.Status = petstore.OrderStatus(status)
	}

	if complete, ok := values["complete"]; ok {
		b, err := strconv.ParseBool(complete)
		if err != nil {
			return fmt.Errorf("parsing complete: %w", err)
		}

		order.Complete = b
	}

	w.order = order

	return nil
}

func (w *world) placeOrder(ctx context.Context) error {
	w.placed, w.err = w.client().Store().PlaceOrderUntilVisible(ctx, w.order)
	if w.err == nil {
		id := w.placed.ID
		w.deferCleanup(func(ctx context.Context) { _ = w.client().Store().DeleteOrderUntilAbsent(ctx, id) })
	}

	return nil
}

func (w *world) orderShouldBePlaced() error {
	if w.err != nil {
		return fmt.Errorf("placing order: %w", w.err)
	}

	if w.placed.ID == 0 {
		return fmt.Errorf("placed order has no id")
	}

	return assertExpectedAndActual(assert.Equal, w.order.PetID, w.placed.PetID)
}

func (w *world) getOrder(ctx context.Context) error {
	fetched, err := w.client().Store().GetOrder(ctx, w.placed.ID)
	if err != nil {
		return err
	}

	w.placed = fetched

	return nil
}

func (w *world) orderDetailsShouldMatch() error {
	checks := []struct {
		expected, actual interface{}
	}{
		{w.order.PetID, w.placed.PetID},
		{w.order.Quantity, w.placed.Quantity},
		{w.order.Status, w.placed.Status},
		{w.order.Complete, w.placed.Complete},
	}

	for _, check := range checks {
		if err := assertExpectedAndActual(assert.Equal, check.expected, check.actual); err != nil {
			return err
		}
	}

	return nil
}

func (w *world) deleteOrder(ctx context.Context) error {
	return w.client().Store().DeleteOrderUntilAbsent(ctx, w.placed.ID)
}

func (w *world) orderShouldNotBeFound(ctx context.Context) error {
	_, err := w.client().Store().GetOrder(ctx, w.placed.ID)

	return assertActual(assert.True, petstore.IsNotFound(err), "expected not found, got %v", err)
}

func (w *world) getInventory(ctx context.Context) error {
	w.inventory, w.err = w.client().Store().Inventory(ctx)

	return w.err
}

func (w *world) inventoryShouldBeReturned() error {
	return assertActual(assert.True, w.inventory != nil, "inventory is nil")
}

func (w *world) inventoryShouldContainAvailable() error {
	return assertActual(assert.True, w.inventory[string(petstore.PetStatusAvailable)] > 0,
		"inventory %v has no available pets", w.inventory)
}

func (w *world) orderDoesNotExist(ctx context.Context, id int64) error {
	return w.client().Store().DeleteOrderUntilAbsent(ctx, id)
}

func (w *world) attemptRetrieveOrder(ctx context.Context, id int64) error {
	w.placed, w.err = w.client().Store().GetOrder(ctx, id)

	return nil
}
