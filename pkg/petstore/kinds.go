package petstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a resource family in the store.
type Kind string

// Resource kinds exposed by the store.
const (
	KindPet   Kind = "pet"
	KindOrder Kind = "order"
	KindUser  Kind = "user"
)

// Kinds lists every resource kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindPet, KindOrder, KindUser}
}

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPet:
		return KindPet, nil
	case KindOrder:
		return KindOrder, nil
	case KindUser:
		return KindUser, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Route describes where a kind lives on the wire.
type Route struct {
	// Collection is the create endpoint.
	Collection string
	// Item addresses one resource; its single placeholder is Param.
	Item string
	// Param is the placeholder name used by Item.
	Param string
	// Update is the full-replacement endpoint (PUT).
	Update string
	// FormUpdate is the partial form-encoded update endpoint (POST), if any.
	FormUpdate string
}

var routes = map[Kind]Route{
	KindPet: {
		Collection: "/pet",
		Item:       "/pet/{petId}",
		Param:      "petId",
		Update:     "/pet",
		FormUpdate: "/pet/{petId}",
	},
	KindOrder: {
		Collection: "/store/order",
		Item:       "/store/order/{orderId}",
		Param:      "orderId",
		Update:     "/store/order/{orderId}",
	},
	KindUser: {
		Collection: "/user",
		Item:       "/user/{username}",
		Param:      "username",
		Update:     "/user/{username}",
	},
}

// Route returns the wire routes of the kind.
func (k Kind) Route() (Route, error) {
	r, ok := routes[k]
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}

	return r, nil
}

// SupportsFormUpdate reports whether the kind accepts partial form updates.
func (k Kind) SupportsFormUpdate() bool {
	return routes[k].FormUpdate != ""
}

// AddressedByName reports whether the kind is keyed by name instead of id.
func (k Kind) AddressedByName() bool {
	return k == KindUser
}

// Ref is a handle to a remote resource.
type Ref struct {
	Kind Kind   `json:"kind"           yaml:"kind"`
	ID   int64  `json:"id,omitempty"   yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// PetRef returns a reference to the pet with the given id.
func PetRef(id int64) Ref {
	return Ref{Kind: KindPet, ID: id}
}

// OrderRef returns a reference to the order with the given id.
func OrderRef(id int64) Ref {
	return Ref{Kind: KindOrder, ID: id}
}

// UserRef returns a reference to the user with the given username.
func UserRef(username string) Ref {
	return Ref{Kind: KindUser, Name: username}
}

// Key returns the value used in the resource path.
func (r Ref) Key() string {
	if r.Kind.AddressedByName() {
		return r.Name
	}

	return strconv.FormatInt(r.ID, 10)
}

// Valid reports whether the reference can address a resource.
func (r Ref) Valid() bool {
	if _, ok := routes[r.Kind]; !ok {
		return false
	}

	if r.Kind.AddressedByName() {
		return r.Name != ""
	}

	return r.ID != 0
}

// PathParams returns the placeholder values for the item route.
func (r Ref) PathParams() map[string]string {
	return map[string]string{routes[r.Kind].Param: r.Key()}
}

func (r Ref) String() string {
	return string(r.Kind) + "/" + r.Key()
}
