package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/internal/fakestore"
	"github.com/fivetwenty-io/petstore-client/internal/testdata"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// ScenarioOptions parameterise the built-in scenarios.
type ScenarioOptions struct {
	Name      string
	Status    petstore.PetStatus
	NewStatus petstore.PetStatus
	Seed      uint64
}

// ScenarioFunc runs one scenario, reporting each step to steps.
type ScenarioFunc func(ctx context.Context, client petstore.Client, steps *StepPrinter, opts ScenarioOptions) error

// Scenarios lists the built-in scenarios by name.
var Scenarios = map[string]ScenarioFunc{
	"pet-lifecycle":   PetLifecycle,
	"order-lifecycle": OrderLifecycle,
	"user-lifecycle":  UserLifecycle,
}

// StepPrinter prints one line per scenario step.
type StepPrinter struct {
	w     io.Writer
	count int
}

// NewStepPrinter writes steps to w.
func NewStepPrinter(w io.Writer) *StepPrinter {
	return &StepPrinter{w: w}
}

// Run executes fn as the next step and prints its outcome.
func (p *StepPrinter) Run(name string, fn func() error) error {
	p.count++
	start := time.Now()

	err := fn()
	if err != nil {
		_, _ = fmt.Fprintf(p.w, "%2d. FAIL %s (%s): %v\n", p.count, name, formatDuration(time.Since(start)), err)

		return fmt.Errorf("step %q: %w", name, err)
	}

	_, _ = fmt.Fprintf(p.w, "%2d. ok   %s (%s)\n", p.count, name, formatDuration(time.Since(start)))

	return nil
}

// Steps returns the number of steps run so far.
func (p *StepPrinter) Steps() int {
	return p.count
}

func expect(ok bool, format string, args ...interface{}) error {
	if ok {
		return nil
	}

	return fmt.Errorf("%w: %s", constants.ErrScenarioAssertion, fmt.Sprintf(format, args...))
}

// PetLifecycle creates a pet, changes its status, deletes it twice and
// checks every observation along the way.
func PetLifecycle(ctx context.Context, client petstore.Client, steps *StepPrinter, opts ScenarioOptions) error {
	pets := client.Pets()

	var created *petstore.Pet

	err := steps.Run(fmt.Sprintf("add pet %q (%s)", opts.Name, opts.Status), func() error {
		var err error

		created, err = pets.AddUntilVisible(ctx, &petstore.Pet{Name: opts.Name, Status: opts.Status})
		if err != nil {
			return err
		}

		return expect(created.ID != 0 && created.Name == opts.Name, "created pet %d named %q", created.ID, created.Name)
	})
	if err != nil {
		return err
	}

	err = steps.Run(fmt.Sprintf("set status of pet %d to %s", created.ID, opts.NewStatus), func() error {
		_, err := pets.UpdateWithFormUntilReflected(ctx, created.ID, "", opts.NewStatus)

		return err
	})
	if err != nil {
		return err
	}

	err = steps.Run(fmt.Sprintf("fetch pet %d", created.ID), func() error {
		pet, err := pets.Get(ctx, created.ID)
		if err != nil {
			return err
		}

		return expect(pet.Status == opts.NewStatus, "status is %q, want %q", pet.Status, opts.NewStatus)
	})
	if err != nil {
		return err
	}

	err = steps.Run(fmt.Sprintf("delete pet %d", created.ID), func() error {
		return pets.DeleteUntilAbsent(ctx, created.ID)
	})
	if err != nil {
		return err
	}

	err = steps.Run(fmt.Sprintf("fetch deleted pet %d", created.ID), func() error {
		_, err := pets.Get(ctx, created.ID)

		return expect(petstore.IsNotFound(err), "got %v, want not found", err)
	})
	if err != nil {
		return err
	}

	return steps.Run(fmt.Sprintf("delete pet %d again", created.ID), func() error {
		return pets.DeleteUntilAbsent(ctx, created.ID)
	})
}

// OrderLifecycle places an order for a generated pet id, reads it back and
// deletes it.
func OrderLifecycle(ctx context.Context, client petstore.Client, steps *StepPrinter, opts ScenarioOptions) error {
	orders := client.Store()
	generator := testdata.New(opts.Seed)

	var placed *petstore.Order

	err := steps.Run("place order", func() error {
		var err error

		placed, err = orders.PlaceOrderUntilVisible(ctx, generator.RandomOrder(generator.RandomID()))

		return err
	})
	if err != nil {
		return err
	}

	err = steps.Run(fmt.Sprintf("fetch order %d", placed.ID), func() error {
		order, err := orders.GetOrder(ctx, placed.ID)
		if err != nil {
			return err
		}

		return expect(order.PetID == placed.PetID && order.Quantity == placed.Quantity,
			"order %d is for pet %d x%d", order.ID, order.PetID, order.Quantity)
	})
	if err != nil {
		return err
	}

	err = steps.Run(fmt.Sprintf("delete order %d", placed.ID), func() error {
		return orders.DeleteOrderUntilAbsent(ctx, placed.ID)
	})
	if err != nil {
		return err
	}

	return steps.Run(fmt.Sprintf("fetch deleted order %d", placed.ID), func() error {
		_, err := orders.GetOrder(ctx, placed.ID)

		return expect(petstore.IsNotFound(err), "got %v, want not found", err)
	})
}

// UserLifecycle creates a generated user, logs in and out, renames the user
// and deletes it.
func UserLifecycle(ctx context.Context, client petstore.Client, steps *StepPrinter, opts ScenarioOptions) error {
	users := client.Users()
	user := testdata.New(opts.Seed).RandomUser()
	renamed := testdata.UniqueUsername(user.FirstName)

	err := steps.Run(fmt.Sprintf("create user %s", user.Username), func() error {
		created, err := users.CreateUntilVisible(ctx, user)
		if err != nil {
			return err
		}

		return expect(created.Email == user.Email, "email is %q, want %q", created.Email, user.Email)
	})
	if err != nil {
		return err
	}

	err = steps.Run(fmt.Sprintf("log in as %s", user.Username), func() error {
		session, err := users.Login(ctx, user.Username, user.Password)
		if err != nil {
			return err
		}

		return expect(session.Message != "", "empty login message")
	})
	if err != nil {
		return err
	}

	err = steps.Run("log out", func() error {
		_, err := users.Logout(ctx)

		return err
	})
	if err != nil {
		return err
	}

	err = steps.Run(fmt.Sprintf("rename user to %s", renamed), func() error {
		changed := *user
		changed.Username = renamed

		updated, err := users.UpdateUntilReflected(ctx, user.Username, &changed)
		if err != nil {
			return err
		}

		return expect(updated.Username == renamed, "username is %q", updated.Username)
	})
	if err != nil {
		return err
	}

	return steps.Run(fmt.Sprintf("delete user %s", renamed), func() error {
		return users.DeleteUntilAbsent(ctx, renamed)
	})
}

// NewScenarioCommand creates the scenario command group.
func NewScenarioCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run end-to-end scenarios",
		Long: `Run built-in end-to-end scenarios through the convergent client.

With --offline the scenario runs against an in-process store whose reads lag
behind writes by --lag requests.`,
	}

	cmd.PersistentFlags().Bool("offline", false, "run against an in-process eventually consistent store")
	cmd.PersistentFlags().Int("lag", 2, "reads before a write becomes visible in offline mode")

	cmd.AddCommand(newScenarioListCommand())
	cmd.AddCommand(newScenarioRunCommand())
	cmd.AddCommand(newScenarioLifecycleCommand())

	return cmd
}

func newScenarioListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scenarios",
		Long:  "List the names accepted by 'scenario run'",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(Scenarios))
			for name := range Scenarios {
				names = append(names, name)
			}

			sort.Strings(names)

			for _, name := range names {
				printf(cmd, "%s\n", name)
			}

			return nil
		},
	}
}

func newScenarioRunCommand() *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "run NAME",
		Short: "Run a scenario by name",
		Long:  "Run one of the scenarios printed by 'scenario list'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, ok := Scenarios[args[0]]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownScenario, args[0])
			}

			return runScenario(cmd, args[0], scenario, ScenarioOptions{
				Name:      "Fluffy",
				Status:    petstore.PetStatusAvailable,
				NewStatus: petstore.PetStatusSold,
				Seed:      seed,
			})
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "test data seed (0 picks one)")

	return cmd
}

func newScenarioLifecycleCommand() *cobra.Command {
	var name, status, newStatus string

	cmd := &cobra.Command{
		Use:   "lifecycle",
		Short: "Run the pet lifecycle scenario",
		Long: `Create a pet, change its status, then delete it twice, waiting for the
store to reflect every change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := parsePetStatus(status)
			if err != nil {
				return err
			}

			final, err := parsePetStatus(newStatus)
			if err != nil {
				return err
			}

			return runScenario(cmd, "pet-lifecycle", PetLifecycle, ScenarioOptions{
				Name:      name,
				Status:    initial,
				NewStatus: final,
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "Fluffy", "pet name")
	cmd.Flags().StringVar(&status, "status", string(petstore.PetStatusAvailable), "initial status")
	cmd.Flags().StringVar(&newStatus, "new-status", string(petstore.PetStatusSold), "status to change to")

	return cmd
}

func runScenario(cmd *cobra.Command, name string, scenario ScenarioFunc, opts ScenarioOptions) error {
	offline, _ := cmd.Flags().GetBool("offline")
	lag, _ := cmd.Flags().GetInt("lag")

	var (
		session *Session
		err     error
	)

	if offline {
		store := fakestore.New(fakestore.WithLag(lag), fakestore.WithAPIKey(viper.GetString(KeyAPIKey)))
		defer store.Close()

		session, err = CreateClientFor(cmd, store.BaseURL())
	} else {
		session, err = CreateClient(cmd)
	}

	if err != nil {
		return err
	}

	defer func() { _ = session.Close() }()

	printf(cmd, "Scenario %s against %s\n", name, session.BaseURL)

	start := time.Now()
	steps := NewStepPrinter(cmd.OutOrStdout())

	err = scenario(commandContext(cmd), session.Client, steps, opts)
	if err != nil {
		return fmt.Errorf("scenario %s failed: %w", name, err)
	}

	printf(cmd, "Scenario %s passed: %d steps in %s\n", name, steps.Steps(), formatDuration(time.Since(start)))

	return nil
}
