package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/internal/testdata"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// NewPetsCommand creates the pets command group.
func NewPetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pets",
		Aliases: []string{"pet"},
		Short:   "Manage pets",
		Long: `Add, find, update and delete pets.

Mutating commands wait until the store serves the change unless --no-wait is set.`,
	}

	cmd.AddCommand(newPetsAddCommand())
	cmd.AddCommand(newPetsGetCommand())
	cmd.AddCommand(newPetsFindCommand())
	cmd.AddCommand(newPetsUpdateCommand())
	cmd.AddCommand(newPetsUpdateFormCommand())
	cmd.AddCommand(newPetsDeleteCommand())
	cmd.AddCommand(newPetsUploadImageCommand())

	return cmd
}

type petFlags struct {
	name      string
	status    string
	category  string
	tags      []string
	photoURLs []string
}

func (f *petFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "pet name")
	cmd.Flags().StringVar(&f.status, "status", "", "pet status (available, pending, sold)")
	cmd.Flags().StringVar(&f.category, "category", "", "category name")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "tag name (repeatable)")
	cmd.Flags().StringSliceVar(&f.photoURLs, "photo-url", nil, "photo URL (repeatable)")
}

// apply copies every flag that was set onto pet.
func (f *petFlags) apply(cmd *cobra.Command, pet *petstore.Pet) error {
	if cmd.Flags().Changed("name") {
		pet.Name = f.name
	}

	if cmd.Flags().Changed("status") {
		status, err := parsePetStatus(f.status)
		if err != nil {
			return err
		}

		pet.Status = status
	}

	if cmd.Flags().Changed("category") {
		pet.Category = &petstore.Category{Name: f.category}
	}

	if cmd.Flags().Changed("tag") {
		pet.Tags = make([]petstore.Tag, 0, len(f.tags))
		for i, name := range f.tags {
			pet.Tags = append(pet.Tags, petstore.Tag{ID: int64(i + 1), Name: name})
		}
	}

	if cmd.Flags().Changed("photo-url") {
		pet.PhotoURLs = f.photoURLs
	}

	return nil
}

func newPetsAddCommand() *cobra.Command {
	var (
		flags  petFlags
		id     int64
		random bool
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pet",
		Long:  "Add a pet to the store and wait until it can be fetched",
		Example: `  petstore pets add --name Fluffy --status available --tag cute
  petstore pets add --random`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pet := &petstore.Pet{}
			if random {
				pet = testdata.New(seed).RandomPet()
			}

			if cmd.Flags().Changed("id") {
				pet.ID = id
			}

			err := flags.apply(cmd, pet)
			if err != nil {
				return err
			}

			if pet.Name == "" {
				return petstore.ErrPetNameRequired
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				pets := session.Client.Pets()

				var created *petstore.Pet
				if waitForConvergence() {
					created, err = pets.AddUntilVisible(ctx, pet)
				} else {
					created, err = pets.Add(ctx, pet)
				}

				if err != nil {
					return fmt.Errorf("failed to add pet: %w", err)
				}

				return renderPet(cmd, created)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().Int64Var(&id, "id", 0, "explicit pet id (the store assigns one otherwise)")
	cmd.Flags().BoolVar(&random, "random", false, "generate a random pet; other flags override its fields")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for --random (0 picks one)")

	return cmd
}

func newPetsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PET_ID",
		Short: "Get a pet",
		Long:  "Display a single pet by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				pet, err := session.Client.Pets().Get(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to get pet: %w", err)
				}

				return renderPet(cmd, pet)
			})
		},
	}
}

func newPetsFindCommand() *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:     "find",
		Aliases: []string{"list"},
		Short:   "Find pets by status",
		Long:    "List pets whose status matches any of the given values",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]petstore.PetStatus, 0, len(statuses))

			for _, s := range statuses {
				status, err := parsePetStatus(s)
				if err != nil {
					return err
				}

				if status != "" {
					parsed = append(parsed, status)
				}
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				pets, err := session.Client.Pets().FindByStatus(ctx, parsed...)
				if err != nil {
					return fmt.Errorf("failed to find pets: %w", err)
				}

				return renderPets(cmd, pets)
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", []string{string(petstore.PetStatusAvailable)}, "status to match (repeatable)")

	return cmd
}

func newPetsUpdateCommand() *cobra.Command {
	var flags petFlags

	cmd := &cobra.Command{
		Use:   "update PET_ID",
		Short: "Update a pet",
		Long:  "Replace a pet with its current state plus the given changes and wait until the store serves them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				pets := session.Client.Pets()

				pet, err := pets.Get(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to get pet: %w", err)
				}

				err = flags.apply(cmd, pet)
				if err != nil {
					return err
				}

				var updated *petstore.Pet
				if waitForConvergence() {
					updated, err = pets.UpdateUntilReflected(ctx, pet)
				} else {
					updated, err = pets.Update(ctx, pet)
				}

				if err != nil {
					return fmt.Errorf("failed to update pet: %w", err)
				}

				return renderPet(cmd, updated)
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newPetsUpdateFormCommand() *cobra.Command {
	var name, status string

	cmd := &cobra.Command{
		Use:   "update-form PET_ID",
		Short: "Update a pet's name or status",
		Long:  "Change a pet's name and/or status with a form post and wait until the store serves the change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			parsed, err := parsePetStatus(status)
			if err != nil {
				return err
			}

			if name == "" && parsed == "" {
				return constants.ErrNothingToUpdate
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				pets := session.Client.Pets()

				if !waitForConvergence() {
					resp, err := pets.UpdateWithForm(ctx, id, name, parsed)
					if err != nil {
						return fmt.Errorf("failed to update pet: %w", err)
					}

					return renderAPIResponse(cmd, resp)
				}

				pet, err := pets.UpdateWithFormUntilReflected(ctx, id, name, parsed)
				if err != nil {
					return fmt.Errorf("failed to update pet: %w", err)
				}

				return renderPet(cmd, pet)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&status, "status", "", "new status (available, pending, sold)")

	return cmd
}

func newPetsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete PET_ID",
		Short: "Delete a pet",
		Long:  "Delete a pet and wait until the store no longer serves it. Deleting a missing pet succeeds.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				pets := session.Client.Pets()

				if waitForConvergence() {
					err = pets.DeleteUntilAbsent(ctx, id)
				} else {
					err = pets.Delete(ctx, id)
				}

				if err != nil {
					return fmt.Errorf("failed to delete pet: %w", err)
				}

				printf(cmd, "Deleted pet %d\n", id)

				return nil
			})
		},
	}
}

func newPetsUploadImageCommand() *cobra.Command {
	var metadata string

	cmd := &cobra.Command{
		Use:   "upload-image PET_ID FILE",
		Short: "Upload a pet image",
		Long:  "Upload an image file for a pet as multipart form data",
		Args:  cobra.ExactArgs(2), //nolint:mnd // id and file
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if args[1] == "" {
				return constants.ErrImageFileRequired
			}

			// The path is supplied by the user on purpose.
			// #nosec G304
			file, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer func() { _ = file.Close() }()

			return withClient(cmd, func(ctx context.Context, session *Session) error {
				resp, err := session.Client.Pets().UploadImage(ctx, id, filepath.Base(args[1]), file, metadata)
				if err != nil {
					return fmt.Errorf("failed to upload image: %w", err)
				}

				return renderAPIResponse(cmd, resp)
			})
		},
	}

	cmd.Flags().StringVar(&metadata, "metadata", "", "additional metadata sent with the image")

	return cmd
}
