package devapi

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents an account that can sign in to the storefront or console
type User struct {
	BaseModel
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	DisplayName  string `json:"display_name"`
	PasswordHash string `json:"-" gorm:"not null"`

	// Comma separated, e.g. "user,admin"
	Roles string `json:"-" gorm:"not null;default:'user'"`
}

// RoleList returns the user's roles as a slice
func (u *User) RoleList() []string {
	roles := []string{}
	for _, r := range strings.Split(u.Roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// HasRole reports whether the user carries role
func (u *User) HasRole(role string) bool {
	for _, r := range u.RoleList() {
		if r == role {
			return true
		}
	}
	return false
}

// Concert is a show with one or more performances
type Concert struct {
	BaseModel
	Name         string        `json:"name" gorm:"not null"`
	Artist       string        `json:"artist" gorm:"not null"`
	Venue        string        `json:"venue"`
	Performances []Performance `json:"performances" gorm:"foreignKey:ConcertID;constraint:OnDelete:CASCADE"`
}

// Performance is one dated performance of a concert
type Performance struct {
	BaseModel
	ConcertID string    `json:"-" gorm:"type:varchar(26);not null;index"`
	StartsAt  time.Time `json:"starts_at" gorm:"not null"`
}

// Order is a purchase made by a user
type Order struct {
	BaseModel
	UserID     string   `json:"-" gorm:"type:varchar(26);not null;index"`
	Status     string   `json:"status" gorm:"not null;default:'pending'"`
	TotalCents int64    `json:"total_cents" gorm:"not null"`
	Tickets    []Ticket `json:"tickets" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// Ticket is one admission issued as part of an order
type Ticket struct {
	BaseModel
	OrderID       string `json:"-" gorm:"type:varchar(26);not null;index"`
	PerformanceID string `json:"performance_id" gorm:"type:varchar(26);not null;index"`
	Code          string `json:"code" gorm:"uniqueIndex;not null"`
	TicketType    string `json:"ticket_type" gorm:"not null"`
	PriceCents    int64  `json:"price_cents" gorm:"not null"`
}

// RevokedToken records a logged-out token until it would have expired
type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;type:varchar(26)"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Concert{},
		&Performance{},
		&Order{},
		&Ticket{},
		&RevokedToken{},
	)
}
