package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

func newCapturingCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer

	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&out)

	return cmd, &out
}

func TestOutputRenderer(t *testing.T) {
	t.Cleanup(viper.Reset)

	pet := &petstore.Pet{ID: 7, Name: "Max", Status: petstore.PetStatusAvailable, Tags: []petstore.Tag{{Name: "cute"}}}

	t.Run("json", func(t *testing.T) {
		viper.Set(KeyOutput, OutputFormatJSON)

		cmd, out := newCapturingCommand()
		require.NoError(t, renderPet(cmd, pet))

		var decoded petstore.Pet
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.Equal(t, *pet, decoded)
	})

	t.Run("yaml", func(t *testing.T) {
		viper.Set(KeyOutput, OutputFormatYAML)

		cmd, out := newCapturingCommand()
		require.NoError(t, renderPet(cmd, pet))
		assert.Contains(t, out.String(), "name: Max")
		assert.Contains(t, out.String(), "status: available")
	})

	t.Run("table", func(t *testing.T) {
		viper.Set(KeyOutput, OutputFormatTable)

		cmd, out := newCapturingCommand()
		require.NoError(t, renderPet(cmd, pet))
		assert.Contains(t, out.String(), "Max")
		assert.Contains(t, out.String(), "cute")
		assert.Contains(t, out.String(), NotAvailable)
	})

	t.Run("invalid", func(t *testing.T) {
		viper.Set(KeyOutput, "xml")

		cmd, _ := newCapturingCommand()
		require.ErrorIs(t, renderPet(cmd, pet), constants.ErrInvalidOutput)
	})
}

func TestRenderUser_HidesPassword(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set(KeyOutput, OutputFormatJSON)

	user := &petstore.User{Username: "jdoe", Password: "secret"}

	cmd, out := newCapturingCommand()
	require.NoError(t, renderUser(cmd, user))
	assert.NotContains(t, out.String(), "secret")
	assert.Equal(t, "secret", user.Password)
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, arg := range []string{"", "abc", "0", "-3"} {
		_, err := parseID(arg)
		require.ErrorIs(t, err, constants.ErrInvalidID, arg)
	}
}

func TestParseStatus(t *testing.T) {
	status, err := parsePetStatus("SOLD")
	require.NoError(t, err)
	assert.Equal(t, petstore.PetStatusSold, status)

	_, err = parsePetStatus("adopted")
	require.ErrorIs(t, err, constants.ErrInvalidStatus)

	order, err := parseOrderStatus("delivered")
	require.NoError(t, err)
	assert.Equal(t, petstore.OrderStatusDelivered, order)

	_, err = parseOrderStatus("shipped")
	require.ErrorIs(t, err, constants.ErrInvalidStatus)
}

func TestConvergenceSettings(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set(KeyAttempts, 9)
	viper.Set(KeyDelay, "250ms")
	viper.Set(KeyBackoff, "exponential")
	viper.Set(KeyMultiplier, 1.5)

	settings := ConvergenceSettings()
	assert.Equal(t, 9, settings.MaxAttempts)
	assert.Equal(t, int64(250), settings.BaseDelay.Milliseconds())
	assert.Equal(t, "exponential", settings.Backoff)
	assert.InDelta(t, 1.5, settings.Multiplier, 0.0001)
}

func TestCreateClient_RequiresBaseURL(t *testing.T) {
	t.Cleanup(viper.Reset)

	cmd, _ := newCapturingCommand()

	_, err := CreateClient(cmd)
	require.ErrorIs(t, err, constants.ErrNoBaseURL)
}
