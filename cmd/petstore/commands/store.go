package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// NewStoreCommand creates the store command group.
func NewStoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the inventory and manage orders",
		Long:  "Show the pet inventory and place, get or delete orders",
	}

	cmd.AddCommand(newStoreInventoryCommand())
	cmd.AddCommand(newStoreOrdersCommand())

	return cmd
}

func newStoreInventoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Show pet counts by status",
		Long:  "Display how many pets the store holds in each status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, session *Session) error {
				inventory, err := session.Client.Store().Inventory(ctx)
				if err != nil {
					return fmt.Errorf("failed to get inventory: %w", err)
				}

				renderer := &OutputRenderer[petstore.Inventory]{
					RenderTable: func(w io.Writer, inventory petstore.Inventory) error {
						statuses := make([]string, 0, len(inventory))
						for status := range inventory {
							statuses = append(statuses, status)
						}

						sort.Strings(statuses)

						table := tablewriter.NewWriter(w)
						table.Header("Status", "Count")

						for _, status := range statuses {
							_ = table.Append(status, strconv.Itoa(inventory[status]))
						}

						if err := table.Render(); err != nil {
							return fmt.Errorf("failed to render table: %w", err)
						}

						return nil
					},
				}

				return renderer.Render(cmd, inventory)
			})
		},
	}
}

func newStoreOrdersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Manage orders",
		Long:    "Place, get and delete purchase orders",
	}

	cmd.AddCommand(newOrdersPlaceCommand())
	cmd.AddCommand(newOrdersGetCommand())
	cmd.AddCommand(newOrdersDeleteCommand())

	return cmd
}

func newOrdersPlaceCommand() *cobra.Command {
	var (
		id       int64
		petID    int64
		quantity int
		shipIn   time.Duration
		status   string
		complete bool
	)

	cmd := &cobra.Command{
		Use:     "place",
		Short:   "Place an order",
		Long:    "Place an order for a pet and wait until the store serves it",
		Example: `  petstore store orders place --pet-id 10 --quantity 2 --ship-in 72h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if petID <= 0 {
				return fmt.Errorf("%w: --pet-id %d", constants.ErrInvalidID, petID)
			}

			if quantity <= 0 {
				return fmt.Errorf("%w: %d", constants.ErrQuantityOutOfRange, quantity)
			}

			parsed, err := parseOrderStatus(status)
			if err != nil {
				return err
			}

			order := &petstore.Order{
				ID:       id,
				PetID:    petID,
				Quantity: quantity,
				Status:   parsed,
				Complete: complete,
			}

			if shipIn > 0 {
				shipDate := time.Now().UTC().Add(shipIn).Truncate(time.Second)
				order.ShipDate = &shipDate
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				orders := session.Client.Store()

				var placed *petstore.Order
				if waitForConvergence() {
					placed, err = orders.PlaceOrderUntilVisible(ctx, order)
				} else {
					placed, err = orders.PlaceOrder(ctx, order)
				}

				if err != nil {
					return fmt.Errorf("failed to place order: %w", err)
				}

				return renderOrder(cmd, placed)
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "explicit order id (the store assigns one otherwise)")
	cmd.Flags().Int64Var(&petID, "pet-id", 0, "id of the pet to order")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "number of pets")
	cmd.Flags().DurationVar(&shipIn, "ship-in", 0, "ship date relative to now")
	cmd.Flags().StringVar(&status, "status", "", "order status (placed, approved, delivered)")
	cmd.Flags().BoolVar(&complete, "complete", false, "mark the order complete")
	_ = cmd.MarkFlagRequired("pet-id")

	return cmd
}

func newOrdersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ORDER_ID",
		Short: "Get an order",
		Long:  "Display a purchase order by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				order, err := session.Client.Store().GetOrder(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to get order: %w", err)
				}

				return renderOrder(cmd, order)
			})
		},
	}
}

func newOrdersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ORDER_ID",
		Short: "Delete an order",
		Long:  "Delete a purchase order and wait until the store no longer serves it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				orders := session.Client.Store()

				if waitForConvergence() {
					err = orders.DeleteOrderUntilAbsent(ctx, id)
				} else {
					err = orders.DeleteOrder(ctx, id)
				}

				if err != nil {
					return fmt.Errorf("failed to delete order: %w", err)
				}

				printf(cmd, "Deleted order %d\n", id)

				return nil
			})
		},
	}
}
