package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Features are the tenant-level toggles that gate parts of the workflow.
type Features struct {
	PickupEnabled   bool `json:"pickupEnabled"`
	DeliveryEnabled bool `json:"deliveryEnabled"`
	WorkshopEnabled bool `json:"workshopEnabled"`
}

type Store struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	Currency  string          `json:"currency"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	Features  Features        `json:"features"`
	CreatedAt time.Time       `json:"createdAt"`
}

type UserRole string

const (
	RoleOwner UserRole = "OWNER"
	RoleStaff UserRole = "STAFF"
)

type User struct {
	ID           string   `json:"id"`
	StoreID      string   `json:"storeId"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
}

type Customer struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email,omitempty"`
	Address   *string   `json:"address,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Driver struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}
