//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// pngHeader is enough of a PNG for the store to accept the upload.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func (w *world) registerPetSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I have a pet with the following details:$`, w.havePetWithDetails)
	sc.Step(`^I add the pet to the store$`, w.addPet)
	sc.Step(`^the pet should be added successfully$`, w.petShouldBeAdded)
	sc.Step(`^the pet should have the category "([^"]*)"$`, w.petShouldHaveCategory)
	sc.Step(`^the pet should have the tag "([^"]*)"$`, w.petShouldHaveTag)
	sc.Step(`^the pet should have the photo URL "([^"]*)"$`, w.petShouldHavePhotoURL)
	sc.Step(`^I have added a pet to the store$`, w.haveAddedPet)
	sc.Step(`^I have added a pet with status "([^"]*)"$`, w.haveAddedPetWithStatus)
	sc.Step(`^I update the pet's status to "([^"]*)"$`, w.updatePetStatus)
	sc.Step(`^I update the pet's name to "([^"]*)"$`, w.updatePetName)
	sc.Step(`^I update the pet's details via form:$`, w.updatePetViaForm)
	sc.Step(`^I retrieve the pet by its ID$`, w.retrievePet)
	sc.Step(`^the pet status should be "([^"]*)"$`, w.petStatusShouldBe)
	sc.Step(`^the pet name should be "([^"]*)"$`, w.petNameShouldBe)
	sc.Step(`^I delete the pet$`, w.deletePet)
	sc.Step(`^the pet should no longer exist$`, w.petShouldNotExist)
	sc.Step(`^deleting the pet again should succeed$`, w.deletePetAgain)
	sc.Step(`^I upload an image "([^"]*)" for the pet$`, w.uploadImage)
	sc.Step(`^the image should be uploaded successfully$`, w.imageShouldBeUploaded)
	sc.Step(`^I find pets by status "([^"]*)"$`, w.findPetsByStatus)
	sc.Step(`^I should receive a list containing pets with the specified statuses$`, w.petsShouldHaveStatuses)
	sc.Step(`^a pet with ID (\d+) does not exist$`, w.petDoesNotExist)
	sc.Step(`^I attempt to retrieve the pet with ID (\d+)$`, w.attemptRetrievePet)
}

func (w *world) havePetWithDetails(table *godog.Table) error {
	values := rowsToMap(table)
	pet := &petstore.Pet{
		ID:     w.generator.RandomID(),
		Name:   values["name"],
		Status: petstore.PetStatus(values["status"]),
	}

	if category := values["category"]; category != "" {
		pet.Category = &petstore.Category{ID: 1, Name: category}
	}

	if tags := values["tags"]; tags != "" {
		for i, name := range strings.Split(tags, ",") {
			pet.Tags = append(pet.Tags, petstore.Tag{ID: int64(i + 1), Name: strings.TrimSpace(name)})
		}
	}

	if urls := values["photoUrls"]; urls != "" {
		pet.PhotoURLs = strings.Split(urls, ",")
	}

	w.draft = pet

	return nil
}

func (w *world) addPet(ctx context.Context) error {
	if w.draft == nil {
		w.draft = w.generator.RandomPet()
	}

	w.pet, w.err = w.client().Pets().AddUntilVisible(ctx, w.draft)
	if w.err == nil {
		id := w.pet.ID
		w.deferCleanup(func(ctx context.Context) { _ = w.client().Pets().DeleteUntilAbsent(ctx, id) })
	}

	return nil
}

func (w *world) petShouldBeAdded() error {
	if w.err != nil {
		return fmt.Errorf("adding pet: %w", w.err)
	}

	if w.pet.ID == 0 {
		return fmt.Errorf("added pet has no id")
	}

	return assertExpectedAndActual(assert.Equal, w.draft.Name, w.pet.Name)
}

func (w *world) petShouldHaveCategory(name string) error {
	if w.pet == nil || w.pet.Category == nil {
		return fmt.Errorf("pet has no category")
	}

	return assertExpectedAndActual(assert.Equal, name, w.pet.Category.Name)
}

func (w *world) petShouldHaveTag(name string) error {
	if w.pet == nil {
		return fmt.Errorf("no pet")
	}

	return assertActual(assert.True, w.pet.HasTag(name), "pet %d has no tag %q", w.pet.ID, name)
}

func (w *world) petShouldHavePhotoURL(url string) error {
	if w.pet == nil {
		return fmt.Errorf("no pet")
	}

	return assertExpectedAndActual(assert.Contains, w.pet.PhotoURLs, url)
}

func (w *world) haveAddedPet(ctx context.Context) error {
	w.draft = w.generator.RandomPet()

	if err := w.addPet(ctx); err != nil {
		return err
	}

	return w.petShouldBeAdded()
}

func (w *world) haveAddedPetWithStatus(ctx context.Context, status string) error {
	w.draft = w.generator.RandomPet()
	w.draft.Status = petstore.PetStatus(status)

	if err := w.addPet(ctx); err != nil {
		return err
	}

	return w.petShouldBeAdded()
}

func (w *world) updatePetStatus(ctx context.Context, status string) error {
	w.pet, w.err = w.client().Pets().UpdateWithFormUntilReflected(ctx, w.pet.ID, "", petstore.PetStatus(status))

	return w.err
}

func (w *world) updatePetName(ctx context.Context, name string) error {
	changed := *w.pet
	changed.Name = name

	w.pet, w.err = w.client().Pets().UpdateUntilReflected(ctx, &changed)

	return w.err
}

func (w *world) updatePetViaForm(ctx context.Context, table *godog.Table) error {
	values := rowsToMap(table)

	w.pet, w.err = w.client().Pets().UpdateWithFormUntilReflected(ctx, w.pet.ID, values["name"], petstore.PetStatus(values["status"]))

	return w.err
}

func (w *world) retrievePet(ctx context.Context) error {
	w.pet, w.err = w.client().Pets().Get(ctx, w.pet.ID)

	return w.err
}

func (w *world) petStatusShouldBe(status string) error {
	return assertExpectedAndActual(assert.Equal, petstore.PetStatus(status), w.pet.Status)
}

func (w *world) petNameShouldBe(name string) error {
	return assertExpectedAndActual(assert.Equal, name, w.pet.Name)
}

func (w *world) deletePet(ctx context.Context) error {
	w.err = w.client().Pets().DeleteUntilAbsent(ctx, w.pet.ID)

	return w.err
}

func (w *world) petShouldNotExist(ctx context.Context) error {
	_, err := w.client().Pets().Get(ctx, w.pet.ID)

	return assertActual(assert.True, petstore.IsNotFound(err), "expected not found, got %v", err)
}

func (w *world) deletePetAgain(ctx context.Context) error {
	return w.client().Pets().DeleteUntilAbsent(ctx, w.pet.ID)
}

func (w *world) uploadImage(ctx context.Context, filename string) error {
	w.upload = filename
	w.response, w.err = w.client().Pets().UploadImage(ctx, w.pet.ID, filename, bytes.NewReader(pngHeader), "scenario upload")

	return nil
}

func (w *world) imageShouldBeUploaded() error {
	if w.err != nil {
		return fmt.Errorf("uploading image: %w", w.err)
	}

	return assertExpectedAndActual(assert.Contains, w.response.Message, w.upload)
}

func (w *world) findPetsByStatus(ctx context.Context, status string) error {
	w.statuses = []petstore.PetStatus{petstore.PetStatus(status)}
	w.pets, w.err = w.client().Pets().FindByStatus(ctx, w.statuses...)

	return w.err
}

func (w *world) petsShouldHaveStatuses() error {
	if len(w.pets) == 0 {
		return fmt.Errorf("no pets found with statuses %v", w.statuses)
	}

	for _, pet := range w.pets {
		if err := assertExpectedAndActual(assert.Contains, w.statuses, pet.Status, "pet %d", pet.ID); err != nil {
			return err
		}
	}

	return nil
}

func (w *world) petDoesNotExist(ctx context.Context, id int64) error {
	return w.client().Pets().DeleteUntilAbsent(ctx, id)
}

func (w *world) attemptRetrievePet(ctx context.Context, id int64) error {
	w.pet, w.err = w.client().Pets().Get(ctx, id)

	return nil
}
