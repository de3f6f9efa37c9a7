package models

import "time"

// Favorite links a user to a saved property.
type Favorite struct {
	Base       `bson:",inline"`
	UserID     string    `bson:"user_id" json:"user_id"`
	PropertyID int64     `bson:"property_id" json:"property_id"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
