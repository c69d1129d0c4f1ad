package testdata

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

func TestGenerator_SeedIsDeterministic(t *testing.T) {
	t.Parallel()

	first := New(42).RandomPet()
	second := New(42).RandomPet()

	assert.Equal(t, first, second)
}

func TestGenerator_RandomPet(t *testing.T) {
	t.Parallel()

	gen := New(7)

	for range 20 {
		pet := gen.RandomPet()

		assert.Positive(t, pet.ID)
		assert.NotEmpty(t, pet.Name)
		assert.Contains(t, []petstore.PetStatus{
			petstore.PetStatusAvailable,
			petstore.PetStatusPending,
			petstore.PetStatusSold,
		}, pet.Status)
		require.NotNil(t, pet.Category)
		assert.Contains(t, petCategories, pet.Category.Name)
		assert.NotEmpty(t, pet.PhotoURLs)
		assert.LessOrEqual(t, len(pet.Tags), 3)
		assert.NotEmpty(t, pet.Tags)
	}
}

func TestGenerator_BasicPet(t *testing.T) {
	t.Parallel()

	pet := New(1).BasicPet()

	assert.NotEmpty(t, pet.Name)
	assert.Nil(t, pet.Category)
	assert.Empty(t, pet.Tags)
}

func TestGenerator_RandomOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	gen := New(3)
	gen.now = func() time.Time { return now }

	order := gen.RandomOrder(99)

	assert.Equal(t, int64(99), order.PetID)
	assert.Equal(t, petstore.OrderStatusPlaced, order.Status)
	assert.GreaterOrEqual(t, order.Quantity, 1)
	assert.LessOrEqual(t, order.Quantity, constants.MaxOrderQuantity)
	require.NotNil(t, order.ShipDate)
	assert.True(t, order.ShipDate.After(now))
	assert.False(t, order.ShipDate.After(now.AddDate(0, 0, 30)))
}

func TestGenerator_RandomUser(t *testing.T) {
	t.Parallel()

	gen := New(5)
	first := gen.RandomUser()
	second := New(5).RandomUser()

	assert.Equal(t, first.FirstName, second.FirstName)
	assert.NotEqual(t, first.Username, second.Username, "usernames carry a random suffix")
	assert.Len(t, first.Password, 12)
	assert.Contains(t, first.Email, "@example.com")
}

func TestUniqueUsername(t *testing.T) {
	t.Parallel()

	name := UniqueUsername("John Doe")

	assert.Regexp(t, regexp.MustCompile(`^johndoe-[0-9a-f]{8}$`), name)
}
