package converge

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/petstore-client/pkg/petstore"
)

func TestClassifyRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resp     *petstore.Response
		err      error
		expected OutcomeKind
	}{
		{name: "ok", resp: &petstore.Response{StatusCode: http.StatusOK}, expected: OutcomeSuccess},
		{name: "not found", resp: &petstore.Response{StatusCode: http.StatusNotFound}, err: &petstore.APIError{StatusCode: 404}, expected: OutcomeNotFound},
		{name: "server error", resp: &petstore.Response{StatusCode: http.StatusInternalServerError}, expected: OutcomeFatal},
		{name: "bad request", resp: &petstore.Response{StatusCode: http.StatusBadRequest}, expected: OutcomeFatal},
		{name: "created is not a read success", resp: &petstore.Response{StatusCode: http.StatusCreated}, expected: OutcomeFatal},
		{name: "transport", err: errors.New("connection reset"), expected: OutcomeFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ClassifyRead(tt.resp, tt.err).Kind)
		})
	}
}

func TestClassifyMutation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, OutcomeSuccess, ClassifyMutation(&petstore.Response{StatusCode: 200}, nil).Kind)
	assert.Equal(t, OutcomeFatal, ClassifyMutation(&petstore.Response{StatusCode: 404}, nil).Kind)
	assert.Equal(t, OutcomeFatal, ClassifyMutation(&petstore.Response{StatusCode: 201}, nil).Kind)

	failed := ClassifyMutation(nil, errors.New("dial tcp: refused"))
	assert.Equal(t, OutcomeFatal, failed.Kind)
	assert.Equal(t, 0, failed.StatusCode)
	assert.EqualError(t, failed.Err, "dial tcp: refused")

	empty := ClassifyMutation(nil, nil)
	assert.ErrorIs(t, empty.Err, ErrEmptyResponse)
}

func TestClassifyDelete(t *testing.T) {
	t.Parallel()

	assert.Equal(t, OutcomeSuccess, ClassifyDelete(&petstore.Response{StatusCode: 200}, nil).Kind)
	assert.Equal(t, OutcomeNotFound, ClassifyDelete(&petstore.Response{StatusCode: 404}, nil).Kind)
	assert.Equal(t, OutcomeFatal, ClassifyDelete(&petstore.Response{StatusCode: 500}, nil).Kind)
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	found := Success([]byte(`{"id":9223372036854775807,"name":"Fluffy","status":"sold","category":{"id":0,"name":"cats"},"photoUrls":["a"]}`))
	missing := NotFound(nil)

	assert.True(t, Visible(found))
	assert.False(t, Visible(missing))
	assert.True(t, Absent(missing))
	assert.False(t, Absent(found))
	assert.False(t, Absent(Transient(503, nil)))

	assert.True(t, FieldsEqual(map[string]interface{}{"status": "sold"})(found))
	assert.False(t, FieldsEqual(map[string]interface{}{"status": "available"})(found))
	assert.False(t, FieldsEqual(map[string]interface{}{"status": "sold"})(missing))
	assert.False(t, FieldsEqual(map[string]interface{}{"tags": []string{}})(found), "absent field")

	pet := petstore.Pet{
		ID:        9223372036854775807,
		Name:      "Fluffy",
		Status:    petstore.PetStatusSold,
		Category:  &petstore.Category{Name: "cats"},
		PhotoURLs: []string{"a"},
	}
	assert.True(t, FieldsEqual(pet)(found), "large ids compare exactly and nested defaults are tolerated")

	pet.ID = 9223372036854775806
	assert.False(t, FieldsEqual(pet)(found))

	assert.False(t, FieldsEqual(make(chan int))(found), "unmarshalable expectation never matches")
	assert.False(t, FieldsEqual(map[string]interface{}{"name": "Fluffy"})(Success([]byte("not json"))))

	assert.True(t, All(Visible, FieldsEqual(map[string]string{"name": "Fluffy"}))(found))
	assert.False(t, All(Visible, Absent)(found))
	assert.True(t, All()(missing))
}

func TestNumbersEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, jsonEqual(json.Number("2"), json.Number("2.0")))
	assert.False(t, jsonEqual(json.Number("2"), "2"))
	assert.True(t, jsonEqual([]interface{}{json.Number("1")}, []interface{}{json.Number("1")}))
	assert.False(t, jsonEqual([]interface{}{json.Number("1")}, []interface{}{}))
	assert.True(t, jsonEqual(nil, []interface{}{}))
	assert.True(t, jsonEqual(nil, nil))
	assert.False(t, jsonEqual(nil, "x"))
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "not_found (status 404)", NotFound(nil).String())
	assert.Equal(t, "fatal: boom", Failed(errors.New("boom")).String())
	assert.Equal(t, "success", Outcome{}.String())
	assert.Equal(t, "outcome(9)", OutcomeKind(9).String())
}
