package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/internal/testdata"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users",
		Long:    "Create, get, update and delete store users, and log in or out",
	}

	cmd.AddCommand(newUsersCreateCommand())
	cmd.AddCommand(newUsersCreateListCommand())
	cmd.AddCommand(newUsersGetCommand())
	cmd.AddCommand(newUsersUpdateCommand())
	cmd.AddCommand(newUsersDeleteCommand())
	cmd.AddCommand(NewLoginCommand())
	cmd.AddCommand(NewLogoutCommand())

	return cmd
}

type userFlags struct {
	username   string
	firstName  string
	lastName   string
	email      string
	phone      string
	password   string
	userStatus int
}

func (f *userFlags) register(cmd *cobra.Command, usernameHelp string) {
	cmd.Flags().StringVar(&f.username, "username", "", usernameHelp)
	cmd.Flags().StringVar(&f.firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&f.lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&f.password, "password", "", "password")
	cmd.Flags().IntVar(&f.userStatus, "user-status", 0, "numeric user status")
}

// apply copies every flag that was set onto user.
func (f *userFlags) apply(cmd *cobra.Command, user *petstore.User) {
	flags := cmd.Flags()

	if flags.Changed("username") {
		user.Username = f.username
	}

	if flags.Changed("first-name") {
		user.FirstName = f.firstName
	}

	if flags.Changed("last-name") {
		user.LastName = f.lastName
	}

	if flags.Changed("email") {
		user.Email = f.email
	}

	if flags.Changed("phone") {
		user.Phone = f.phone
	}

	if flags.Changed("password") {
		user.Password = f.password
	}

	if flags.Changed("user-status") {
		user.UserStatus = f.userStatus
	}
}

func newUsersCreateCommand() *cobra.Command {
	var (
		flags  userFlags
		random bool
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long:  "Create a user and wait until it can be fetched by username",
		Example: `  petstore users create --username jdoe --email jdoe@example.com --password secret
  petstore users create --random`,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := &petstore.User{}
			if random {
				user = testdata.New(seed).RandomUser()
			}

			flags.apply(cmd, user)

			if user.Username == "" {
				return petstore.ErrUsernameRequired
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				users := session.Client.Users()

				if !waitForConvergence() {
					resp, err := users.Create(ctx, user)
					if err != nil {
						return fmt.Errorf("failed to create user: %w", err)
					}

					return renderAPIResponse(cmd, resp)
				}

				created, err := users.CreateUntilVisible(ctx, user)
				if err != nil {
					return fmt.Errorf("failed to create user: %w", err)
				}

				return renderUser(cmd, created)
			})
		},
	}

	flags.register(cmd, "username")
	cmd.Flags().BoolVar(&random, "random", false, "generate a random user; other flags override its fields")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for --random (0 picks one)")

	return cmd
}

func newUsersCreateListCommand() *cobra.Command {
	var (
		count    int
		seed     uint64
		useArray bool
	)

	cmd := &cobra.Command{
		Use:   "create-list",
		Short: "Create random users in one request",
		Long:  "Generate random users and create them with a single list (or array) request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return constants.ErrNoUsersToCreate
			}

			generator := testdata.New(seed)

			batch := make([]petstore.User, 0, count)
			for range count {
				batch = append(batch, *generator.RandomUser())
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				users := session.Client.Users()

				var err error
				if useArray {
					_, err = users.CreateWithArray(ctx, batch)
				} else {
					_, err = users.CreateWithList(ctx, batch)
				}

				if err != nil {
					return fmt.Errorf("failed to create users: %w", err)
				}

				renderer := &OutputRenderer[[]petstore.User]{
					RenderTable: func(w io.Writer, batch []petstore.User) error {
						table := tablewriter.NewWriter(w)
						table.Header("Username", "Email", "Password")

						for _, user := range batch {
							_ = table.Append(user.Username, user.Email, user.Password)
						}

						if err := table.Render(); err != nil {
							return fmt.Errorf("failed to render table: %w", err)
						}

						return nil
					},
				}

				return renderer.Render(cmd, batch)
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 1, "number of users to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "generator seed (0 picks one)")
	cmd.Flags().BoolVar(&useArray, "array", false, "use the createWithArray endpoint")

	return cmd
}

func newUsersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get USERNAME",
		Short: "Get a user",
		Long:  "Display a user by username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, session *Session) error {
				user, err := session.Client.Users().Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get user: %w", err)
				}

				return renderUser(cmd, user)
			})
		},
	}
}

func newUsersUpdateCommand() *cobra.Command {
	var flags userFlags

	cmd := &cobra.Command{
		Use:   "update USERNAME",
		Short: "Update a user",
		Long: `Replace a user with its current state plus the given changes and wait until
the store serves them. --username renames the user.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				users := session.Client.Users()

				user, err := users.Get(ctx, username)
				if err != nil {
					return fmt.Errorf("failed to get user: %w", err)
				}

				flags.apply(cmd, user)

				if !waitForConvergence() {
					resp, err := users.Update(ctx, username, user)
					if err != nil {
						return fmt.Errorf("failed to update user: %w", err)
					}

					return renderAPIResponse(cmd, resp)
				}

				updated, err := users.UpdateUntilReflected(ctx, username, user)
				if err != nil {
					return fmt.Errorf("failed to update user: %w", err)
				}

				return renderUser(cmd, updated)
			})
		},
	}

	flags.register(cmd, "new username")

	return cmd
}

func newUsersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete a user",
		Long:  "Delete a user and wait until the store no longer serves it. Deleting a missing user succeeds.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				users := session.Client.Users()

				var err error
				if waitForConvergence() {
					err = users.DeleteUntilAbsent(ctx, username)
				} else {
					err = users.Delete(ctx, username)
				}

				if err != nil {
					return fmt.Errorf("failed to delete user: %w", err)
				}

				printf(cmd, "Deleted user %s\n", strconv.Quote(username))

				return nil
			})
		},
	}
}
