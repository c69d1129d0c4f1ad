package converge

import (
	"encoding/json"
	"reflect"
)

// Predicate decides whether an observed outcome satisfies the caller.
type Predicate func(Outcome) bool

// Visible is satisfied once the resource can be fetched.
func Visible(o Outcome) bool {
	return o.Kind == OutcomeSuccess
}

// Absent is satisfied once the resource is gone.
func Absent(o Outcome) bool {
	return o.Kind == OutcomeNotFound
}

// FieldsEqual is satisfied when the outcome is Success and every top-level
// field of expected equals the fetched field. expected may be a map or any
// value that marshals to a JSON object; both sides are compared after a JSON
// round trip, so numbers compare by value and struct tags apply.
func FieldsEqual(expected interface{}) Predicate {
	want, err := normalize(expected)
	if err != nil {
		return func(Outcome) bool { return false }
	}

	return func(o Outcome) bool {
		if o.Kind != OutcomeSuccess {
			return false
		}

		got, err := decodeObject(o.Body)
		if err != nil {
			return false
		}

		for field, value := range want {
			actual, ok := got[field]
			if !ok || !jsonEqual(value, actual) {
				return false
			}
		}

		return true
	}
}

// All is satisfied when every predicate is.
func All(predicates ...Predicate) Predicate {
	return func(o Outcome) bool {
		for _, p := range predicates {
			if !p(o) {
				return false
			}
		}

		return true
	}
}

func normalize(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return decodeObject(data)
}

// jsonEqual compares a with b, values produced by a UseNumber decoder.
func jsonEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case nil:
		// The store echoes unset collections as empty ones.
		switch bv := b.(type) {
		case nil:
			return true
		case []interface{}:
			return len(bv) == 0
		case map[string]interface{}:
			return len(bv) == 0
		default:
			return false
		}
	case json.Number:
		bv, ok := b.(json.Number)
		if !ok {
			return false
		}

		return numbersEqual(av, bv)
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok {
			return false
		}

		// Nested objects match when every expected key matches; the store
		// may fill in defaults such as a zero category id.
		for k, v := range av {
			other, found := bv[k]
			if !found || !jsonEqual(v, other) {
				return false
			}
		}

		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}

		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}

		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

func numbersEqual(a, b json.Number) bool {
	if a == b {
		return true
	}

	ai, aErr := a.Int64()
	bi, bErr := b.Int64()

	if aErr == nil && bErr == nil {
		return ai == bi
	}

	af, aErr := a.Float64()
	bf, bErr := b.Float64()

	return aErr == nil && bErr == nil && af == bf
}
