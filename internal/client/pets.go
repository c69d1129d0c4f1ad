package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/petstore-client/internal/http"
	"github.com/fivetwenty-io/petstore-client/pkg/converge"
	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

// PetsClient implements petstore.PetsClient.
type PetsClient struct {
	httpClient *http.Client
	executor   *converge.Executor
}

// NewPetsClient creates a new pets client.
func NewPetsClient(httpClient *http.Client, executor *converge.Executor) *PetsClient {
	return &PetsClient{
		httpClient: httpClient,
		executor:   executor,
	}
}

func petPath(id int64) string {
	return "/pet/" + strconv.FormatInt(id, 10)
}

// Add implements petstore.PetsClient.Add.
func (c *PetsClient) Add(ctx context.Context, pet *petstore.Pet) (*petstore.Pet, error) {
	resp, err := c.httpClient.Post(ctx, "/pet", pet)
	if err != nil {
		return nil, fmt.Errorf("adding pet: %w", err)
	}

	var created petstore.Pet

	err = json.Unmarshal(resp.Body, &created)
	if err != nil {
		return nil, fmt.Errorf("parsing pet response: %w", err)
	}

	return &created, nil
}

// Update implements petstore.PetsClient.Update.
func (c *PetsClient) Update(ctx context.Context, pet *petstore.Pet) (*petstore.Pet, error) {
	resp, err := c.httpClient.Put(ctx, "/pet", pet)
	if err != nil {
		return nil, fmt.Errorf("updating pet: %w", err)
	}

	var updated petstore.Pet

	err = json.Unmarshal(resp.Body, &updated)
	if err != nil {
		return nil, fmt.Errorf("parsing pet response: %w", err)
	}

	return &updated, nil
}

// UpdateWithForm implements petstore.PetsClient.UpdateWithForm.
func (c *PetsClient) UpdateWithForm(ctx context.Context, id int64, name string, status petstore.PetStatus) (*petstore.APIResponse, error) {
	resp, err := c.httpClient.PostForm(ctx, petPath(id), petForm(name, status))
	if err != nil {
		return nil, fmt.Errorf("updating pet with form: %w", err)
	}

	return parseAPIResponse(resp.Body)
}

// Get implements petstore.PetsClient.Get.
func (c *PetsClient) Get(ctx context.Context, id int64) (*petstore.Pet, error) {
	resp, err := c.httpClient.Get(ctx, petPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting pet: %w", err)
	}

	var pet petstore.Pet

	err = json.Unmarshal(resp.Body, &pet)
	if err != nil {
		return nil, fmt.Errorf("parsing pet: %w", err)
	}

	return &pet, nil
}

// FindByStatus implements petstore.PetsClient.FindByStatus.
func (c *PetsClient) FindByStatus(ctx context.Context, statuses ...petstore.PetStatus) ([]petstore.Pet, error) {
	if len(statuses) == 0 {
		return nil, petstore.ErrNoStatuses
	}

	query := url.Values{}
	for _, status := range statuses {
		query.Add("status", string(status))
	}

	resp, err := c.httpClient.Get(ctx, "/pet/findByStatus", query)
	if err != nil {
		return nil, fmt.Errorf("finding pets by status: %w", err)
	}

	var pets []petstore.Pet

	err = json.Unmarshal(resp.Body, &pets)
	if err != nil {
		return nil, fmt.Errorf("parsing pets list: %w", err)
	}

	return pets, nil
}

// Delete implements petstore.PetsClient.Delete.
func (c *PetsClient) Delete(ctx context.Context, id int64) error {
	_, err := c.httpClient.Delete(ctx, petPath(id))
	if err != nil {
		return fmt.Errorf("deleting pet: %w", err)
	}

	return nil
}

// UploadImage implements petstore.PetsClient.UploadImage.
func (c *PetsClient) UploadImage(ctx context.Context, id int64, filename string, content io.Reader, metadata string) (*petstore.APIResponse, error) {
	form := url.Values{}
	if metadata != "" {
		form.Set("additionalMetadata", metadata)
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   petPath(id) + "/uploadImage",
		Form:   form,
		Files:  []petstore.FormFile{{Field: "file", Filename: filename, Content: content}},
	})
	if err != nil {
		return nil, fmt.Errorf("uploading pet image: %w", err)
	}

	return parseAPIResponse(resp.Body)
}

// AddUntilVisible implements petstore.PetsClient.AddUntilVisible.
func (c *PetsClient) AddUntilVisible(ctx context.Context, pet *petstore.Pet) (*petstore.Pet, error) {
	res, err := c.executor.CreateUntilVisible(ctx, petstore.KindPet, pet, converge.Policy{})
	if err != nil {
		return nil, fmt.Errorf("adding pet: %w", err)
	}

	return decodePet(res)
}

// UpdateUntilReflected implements petstore.PetsClient.UpdateUntilReflected.
func (c *PetsClient) UpdateUntilReflected(ctx context.Context, pet *petstore.Pet) (*petstore.Pet, error) {
	if pet.ID == 0 {
		return nil, fmt.Errorf("updating pet: %w", ErrIDRequired)
	}

	res, err := c.executor.UpdateUntilReflected(ctx, petstore.PetRef(pet.ID), converge.Replace(pet), converge.Policy{})
	if err != nil {
		return nil, fmt.Errorf("updating pet: %w", err)
	}

	return decodePet(res)
}

// UpdateWithFormUntilReflected implements petstore.PetsClient.UpdateWithFormUntilReflected.
func (c *PetsClient) UpdateWithFormUntilReflected(ctx context.Context, id int64, name string, status petstore.PetStatus) (*petstore.Pet, error) {
	fields := map[string]string{}
	for key, values := range petForm(name, status) {
		fields[key] = values[0]
	}

	res, err := c.executor.UpdateUntilReflected(ctx, petstore.PetRef(id), converge.FormFields(fields), converge.Policy{})
	if err != nil {
		return nil, fmt.Errorf("updating pet with form: %w", err)
	}

	return decodePet(res)
}

// DeleteUntilAbsent implements petstore.PetsClient.DeleteUntilAbsent.
func (c *PetsClient) DeleteUntilAbsent(ctx context.Context, id int64) error {
	err := c.executor.DeleteUntilAbsent(ctx, petstore.PetRef(id), converge.Policy{})
	if err != nil {
		return fmt.Errorf("deleting pet: %w", err)
	}

	return nil
}

func petForm(name string, status petstore.PetStatus) url.Values {
	form := url.Values{}

	if name != "" {
		form.Set("name", name)
	}

	if status != "" {
		form.Set("status", string(status))
	}

	return form
}

func decodePet(res *converge.Resource) (*petstore.Pet, error) {
	var pet petstore.Pet

	err := res.Decode(&pet)
	if err != nil {
		return nil, fmt.Errorf("parsing pet: %w", err)
	}

	return &pet, nil
}

func parseAPIResponse(body []byte) (*petstore.APIResponse, error) {
	var apiResp petstore.APIResponse

	if len(body) == 0 {
		return &apiResp, nil
	}

	err := json.Unmarshal(body, &apiResp)
	if err != nil {
		return nil, fmt.Errorf("parsing API response: %w", err)
	}

	return &apiResp, nil
}
