package petstore

import (
	"time"
)

// PetStatus is the availability of a pet in the store.
type PetStatus string

// Pet statuses accepted by the store.
const (
	PetStatusAvailable PetStatus = "available"
	PetStatusPending   PetStatus = "pending"
	PetStatusSold      PetStatus = "sold"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order statuses accepted by the store.
const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Category groups pets.
type Category struct {
	ID   int64  `json:"id,omitempty"   yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Tag is a free-form label attached to a pet.
type Tag struct {
	ID   int64  `json:"id,omitempty"   yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Pet represents a pet for sale in the store.
type Pet struct {
	ID        int64     `json:"id,omitempty"        yaml:"id,omitempty"`
	Category  *Category `json:"category,omitempty"  yaml:"category,omitempty"`
	Name      string    `json:"name"                yaml:"name"`
	PhotoURLs []string  `json:"photoUrls"           yaml:"photo_urls"`
	Tags      []Tag     `json:"tags,omitempty"      yaml:"tags,omitempty"`
	Status    PetStatus `json:"status,omitempty"    yaml:"status,omitempty"`
}

// HasTag reports whether the pet carries a tag with the given name.
func (p *Pet) HasTag(name string) bool {
	for _, tag := range p.Tags {
		if tag.Name == name {
			return true
		}
	}

	return false
}

// Order represents a purchase order for a pet.
type Order struct {
	ID       int64       `json:"id,omitempty"       yaml:"id,omitempty"`
	PetID    int64       `json:"petId,omitempty"    yaml:"pet_id,omitempty"`
	Quantity int         `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	ShipDate *time.Time  `json:"shipDate,omitempty" yaml:"ship_date,omitempty"`
	Status   OrderStatus `json:"status,omitempty"   yaml:"status,omitempty"`
	Complete bool        `json:"complete"           yaml:"complete"`
}

// User represents a store user.
type User struct {
	ID         int64  `json:"id,omitempty"         yaml:"id,omitempty"`
	Username   string `json:"username"             yaml:"username"`
	FirstName  string `json:"firstName,omitempty"  yaml:"first_name,omitempty"`
	LastName   string `json:"lastName,omitempty"   yaml:"last_name,omitempty"`
	Email      string `json:"email,omitempty"      yaml:"email,omitempty"`
	Password   string `json:"password,omitempty"   yaml:"-"`
	Phone      string `json:"phone,omitempty"      yaml:"phone,omitempty"`
	UserStatus int    `json:"userStatus,omitempty" yaml:"user_status,omitempty"`
}

// APIResponse is the generic envelope the store returns for operations
// without a resource body (deletes, form updates, uploads, login).
type APIResponse struct {
	Code    int    `json:"code,omitempty"    yaml:"code,omitempty"`
	Type    string `json:"type,omitempty"    yaml:"type,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Inventory maps pet statuses to quantities.
type Inventory map[string]int

// LoginSession is the result of a successful user login.
type LoginSession struct {
	Message      string     `json:"message"                  yaml:"message"`
	RateLimit    int        `json:"rate_limit,omitempty"     yaml:"rate_limit,omitempty"`
	ExpiresAfter *time.Time `json:"expires_after,omitempty"  yaml:"expires_after,omitempty"`
}
