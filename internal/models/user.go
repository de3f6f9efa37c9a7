package models

import (
	"time"
)

// User represents a marketplace account.
type User struct {
	Base         `bson:",inline"`
	Email        string    `bson:"email" json:"email"`
	FirstName    string    `bson:"first_name" json:"first_name"`
	LastName     string    `bson:"last_name" json:"last_name"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string    `bson:"password" json:"-"` // Store hash, not plaintext
	IsAdmin      bool      `bson:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// DisplayName joins first and last name, falling back to the email address.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Email
}
