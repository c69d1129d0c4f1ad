package fakestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

func TestServer_PutRejectsUnencodableValues(t *testing.T) {
	t.Parallel()

	s := New()
	defer s.Close()

	seeded := s.SeedPet(petstore.Pet{Name: "Rex"})
	key := petstore.PetRef(seeded.ID).Key()

	s.mu.Lock()
	err := s.put(petstore.KindPet, key, map[string]interface{}{"name": make(chan int)}, 0)
	s.mu.Unlock()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding pet "+key)

	var pet petstore.Pet
	require.True(t, s.fetch(petstore.KindPet, key, &pet), "a failed write must not hide the stored record")
	assert.Equal(t, "Rex", pet.Name)
}
