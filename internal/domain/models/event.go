// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommunityEventID is the sentinel event identifier used by general
// membership signups that are not tied to a specific ride/event.
const CommunityEventID = "community"

// Event is a ride or gathering created by an administrator.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	Location    string             `bson:"location" json:"location"`
	StartsAt    time.Time          `bson:"starts_at" json:"starts_at"`

	Banner *ImageRef `bson:"banner,omitempty" json:"banner,omitempty"`

	IsActive           bool `bson:"is_active" json:"is_active"`
	CertificateEnabled bool `bson:"certificate_enabled" json:"certificate_enabled"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
