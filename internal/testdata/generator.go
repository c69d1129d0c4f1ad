// Package testdata generates realistic pets, orders and users for scenario
// runs against a shared store.
package testdata

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/fivetwenty-io/petstore-client/internal/constants"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

var (
	petCategories = []string{"Dogs", "Cats", "Birds", "Fish", "Reptiles", "Small Animals"}
	petTags       = []string{"cute", "playful", "friendly", "energetic", "calm", "loyal", "intelligent", "curious"}
	petStatuses   = []string{
		string(petstore.PetStatusAvailable),
		string(petstore.PetStatusPending),
		string(petstore.PetStatusSold),
	}
)

// Generator produces random resources. It is not safe for concurrent use.
type Generator struct {
	faker *gofakeit.Faker
	now   func() time.Time
}

// New returns a generator. A zero seed picks a random one.
func New(seed uint64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		now:   time.Now,
	}
}

// RandomID returns a positive id below one million.
func (g *Generator) RandomID() int64 {
	return int64(g.faker.IntRange(1, 1_000_000))
}

// RandomStatus returns one of the pet statuses.
func (g *Generator) RandomStatus() petstore.PetStatus {
	return petstore.PetStatus(g.faker.RandomString(petStatuses))
}

// BasicPet returns a pet with only id, name and status set.
func (g *Generator) BasicPet() *petstore.Pet {
	return &petstore.Pet{
		ID:     g.RandomID(),
		Name:   g.faker.PetName(),
		Status: g.RandomStatus(),
	}
}

// RandomPet returns a pet with every field populated.
func (g *Generator) RandomPet() *petstore.Pet {
	pet := g.BasicPet()

	pet.Category = &petstore.Category{
		ID:   int64(g.faker.IntRange(1, 100)),
		Name: g.faker.RandomString(petCategories),
	}

	for i := g.faker.IntRange(1, 3); i > 0; i-- {
		pet.PhotoURLs = append(pet.PhotoURLs, g.faker.URL())
	}

	for i := g.faker.IntRange(1, 3); i > 0; i-- {
		pet.Tags = append(pet.Tags, petstore.Tag{
			ID:   int64(g.faker.IntRange(1, 100)),
			Name: g.faker.RandomString(petTags),
		})
	}

	return pet
}

// RandomOrder returns a placed order for petID shipping within a month.
func (g *Generator) RandomOrder(petID int64) *petstore.Order {
	shipDate := g.now().UTC().Truncate(time.Second).AddDate(0, 0, g.faker.IntRange(1, 30))

	return &petstore.Order{
		ID:       g.RandomID(),
		PetID:    petID,
		Quantity: g.faker.IntRange(1, constants.MaxOrderQuantity),
		ShipDate: &shipDate,
		Status:   petstore.OrderStatusPlaced,
		Complete: g.faker.Bool(),
	}
}

// RandomUser returns a user whose username carries a unique suffix.
func (g *Generator) RandomUser() *petstore.User {
	firstName := g.faker.FirstName()
	lastName := g.faker.LastName()

	return &petstore.User{
		ID:         g.RandomID(),
		Username:   UniqueUsername(firstName + "." + lastName),
		FirstName:  firstName,
		LastName:   lastName,
		Email:      strings.ToLower(firstName+"."+lastName) + "@example.com",
		Password:   g.faker.Password(true, true, true, true, false, 12),
		Phone:      g.faker.Phone(),
		UserStatus: g.faker.IntRange(0, 1),
	}
}

// UniqueUsername lowercases base and appends a short random suffix.
func UniqueUsername(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:constants.UsernameSuffixLength]

	return strings.ToLower(strings.ReplaceAll(base, " ", "")) + "-" + suffix
}
