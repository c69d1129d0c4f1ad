package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Masked       = "***"

	// Output formats.
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"

	// JSON formatting.
	defaultJSONIndent = 2

	timeLayout = "2006-01-02 15:04:05"
)

// OutputRenderer handles different output formats.
type OutputRenderer[T any] struct {
	RenderTable func(w io.Writer, data T) error
}

// Render outputs data in the format selected by --output.
func (o *OutputRenderer[T]) Render(cmd *cobra.Command, data T) error {
	w := cmd.OutOrStdout()

	switch format := viper.GetString("output"); format {
	case OutputFormatJSON:
		return StandardJSONRenderer(w, data)
	case OutputFormatYAML:
		return StandardYAMLRenderer(w, data)
	case "", OutputFormatTable:
		return o.RenderTable(w, data)
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutput, format)
	}
}

// StandardJSONRenderer writes indented JSON.
func StandardJSONRenderer[T any](w io.Writer, data T) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes YAML.
func StandardYAMLRenderer[T any](w io.Writer, data T) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(defaultJSONIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

// propertyTable renders two-column key/value rows.
func propertyTable(w io.Writer, rows [][2]string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	for _, row := range rows {
		_ = table.Append(row[0], row[1])
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func renderPet(cmd *cobra.Command, pet *petstore.Pet) error {
	renderer := &OutputRenderer[*petstore.Pet]{
		RenderTable: func(w io.Writer, pet *petstore.Pet) error {
			category := NotAvailable
			if pet.Category != nil && pet.Category.Name != "" {
				category = pet.Category.Name
			}

			tags := make([]string, 0, len(pet.Tags))
			for _, tag := range pet.Tags {
				tags = append(tags, tag.Name)
			}

			return propertyTable(w, [][2]string{
				{"ID", strconv.FormatInt(pet.ID, 10)},
				{"Name", pet.Name},
				{"Status", valueOr(string(pet.Status))},
				{"Category", category},
				{"Tags", valueOr(strings.Join(tags, ", "))},
				{"Photos", valueOr(strings.Join(pet.PhotoURLs, "\n"))},
			})
		},
	}

	return renderer.Render(cmd, pet)
}

func renderPets(cmd *cobra.Command, pets []petstore.Pet) error {
	renderer := &OutputRenderer[[]petstore.Pet]{
		RenderTable: func(w io.Writer, pets []petstore.Pet) error {
			table := tablewriter.NewWriter(w)
			table.Header("ID", "Name", "Status", "Category")

			for _, pet := range pets {
				category := NotAvailable
				if pet.Category != nil && pet.Category.Name != "" {
					category = pet.Category.Name
				}

				_ = table.Append(strconv.FormatInt(pet.ID, 10), pet.Name, string(pet.Status), category)
			}

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			_, _ = fmt.Fprintf(w, "\n%d pet(s)\n", len(pets))

			return nil
		},
	}

	return renderer.Render(cmd, pets)
}

func renderOrder(cmd *cobra.Command, order *petstore.Order) error {
	renderer := &OutputRenderer[*petstore.Order]{
		RenderTable: func(w io.Writer, order *petstore.Order) error {
			shipDate := NotAvailable
			if order.ShipDate != nil {
				shipDate = order.ShipDate.Format(timeLayout)
			}

			return propertyTable(w, [][2]string{
				{"ID", strconv.FormatInt(order.ID, 10)},
				{"Pet ID", strconv.FormatInt(order.PetID, 10)},
				{"Quantity", strconv.Itoa(order.Quantity)},
				{"Ship Date", shipDate},
				{"Status", valueOr(string(order.Status))},
				{"Complete", strconv.FormatBool(order.Complete)},
			})
		},
	}

	return renderer.Render(cmd, order)
}

func renderUser(cmd *cobra.Command, user *petstore.User) error {
	renderer := &OutputRenderer[*petstore.User]{
		RenderTable: func(w io.Writer, user *petstore.User) error {
			return propertyTable(w, [][2]string{
				{"ID", strconv.FormatInt(user.ID, 10)},
				{"Username", user.Username},
				{"First Name", valueOr(user.FirstName)},
				{"Last Name", valueOr(user.LastName)},
				{"Email", valueOr(user.Email)},
				{"Phone", valueOr(user.Phone)},
				{"Status", strconv.Itoa(user.UserStatus)},
			})
		},
	}

	// Passwords are never echoed back.
	shown := *user
	shown.Password = ""

	return renderer.Render(cmd, &shown)
}

func renderAPIResponse(cmd *cobra.Command, resp *petstore.APIResponse) error {
	renderer := &OutputRenderer[*petstore.APIResponse]{
		RenderTable: func(w io.Writer, resp *petstore.APIResponse) error {
			return propertyTable(w, [][2]string{
				{"Code", strconv.Itoa(resp.Code)},
				{"Type", valueOr(resp.Type)},
				{"Message", valueOr(resp.Message)},
			})
		},
	}

	return renderer.Render(cmd, resp)
}

func valueOr(s string) string {
	if s == "" {
		return NotAvailable
	}

	return s
}

// parseID parses a positive numeric resource id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", constants.ErrInvalidID, arg)
	}

	return id, nil
}

// parsePetStatus accepts an empty status or one of the store's values.
func parsePetStatus(s string) (petstore.PetStatus, error) {
	switch status := petstore.PetStatus(strings.ToLower(s)); status {
	case "", petstore.PetStatusAvailable, petstore.PetStatusPending, petstore.PetStatusSold:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q (use available, pending or sold)", constants.ErrInvalidStatus, s)
	}
}

// parseOrderStatus accepts an empty status or one of the store's values.
func parseOrderStatus(s string) (petstore.OrderStatus, error) {
	switch status := petstore.OrderStatus(strings.ToLower(s)); status {
	case "", petstore.OrderStatusPlaced, petstore.OrderStatusApproved, petstore.OrderStatusDelivered:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q (use placed, approved or delivered)", constants.ErrInvalidStatus, s)
	}
}

// waitForConvergence reports whether mutating commands should poll.
func waitForConvergence() bool {
	return !viper.GetBool("no_wait")
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
