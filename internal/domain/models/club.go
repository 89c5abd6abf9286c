// internal/domain/models/club.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Club statuses. Only an admin moves a club between them.
const (
	ClubPending  = "pending"
	ClubApproved = "approved"
	ClubRejected = "rejected"
)

// ValidClubStatus reports whether s is one of the allowed statuses.
func ValidClubStatus(s string) bool {
	return s == ClubPending || s == ClubApproved || s == ClubRejected
}

// Club is a riding club created through a public collaboration
// request. Name is globally unique, case-sensitive on the trimmed
// value.
type Club struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      string             `bson:"status" json:"status"`

	Founder ClubContact   `bson:"founder" json:"founder"`
	Admins  []ClubContact `bson:"admins,omitempty" json:"admins,omitempty"`

	Logo *ImageRef `bson:"logo,omitempty" json:"logo,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ClubContact is a founder/admin sub-record on a club document.
type ClubContact struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}
