// internal/domain/models/registration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registration is a signup for one event, or a community membership
// signup when EventID is the "community" sentinel.
//
// The personal/bike/license fields are a snapshot taken at submission
// time, not references into the users collection. Uniqueness of email,
// phone, bike_registration_number and license_number is enforced per
// event_id by unique indexes (partial for the bike/license fields so
// community signups, which omit them, are not constrained).
type Registration struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID string             `bson:"event_id" json:"event_id"` // ObjectID hex or "community"

	FullName    string    `bson:"full_name" json:"full_name"`
	Email       string    `bson:"email" json:"email"`
	Phone       string    `bson:"phone" json:"phone"`
	DateOfBirth time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`

	EmergencyContactName string `bson:"emergency_contact_name,omitempty" json:"emergency_contact_name,omitempty"`
	EmergencyContact     string `bson:"emergency_contact_phone,omitempty" json:"emergency_contact_phone,omitempty"`

	BikeMake               string `bson:"bike_make,omitempty" json:"bike_make,omitempty"`
	BikeModel              string `bson:"bike_model,omitempty" json:"bike_model,omitempty"`
	BikeRegistrationNumber string `bson:"bike_registration_number,omitempty" json:"bike_registration_number,omitempty"`
	LicenseNumber          string `bson:"license_number,omitempty" json:"license_number,omitempty"`

	LicenseImage *ImageRef `bson:"license_image,omitempty" json:"license_image,omitempty"`

	RequestRidingGears bool        `bson:"request_riding_gears" json:"request_riding_gears"`
	RequestedGears     RidingGears `bson:"requested_gears" json:"requested_gears"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// RidingGears is the gear-selection block of a registration. A missing
// or malformed selection decodes to the zero value (everything false).
type RidingGears struct {
	Helmet      bool `bson:"helmet" json:"helmet"`
	Gloves      bool `bson:"gloves" json:"gloves"`
	Jacket      bool `bson:"jacket" json:"jacket"`
	Boots       bool `bson:"boots" json:"boots"`
	KneeGuards  bool `bson:"knee_guards" json:"kneeGuards"`
	ElbowGuards bool `bson:"elbow_guards" json:"elbowGuards"`
}

// IsCommunity reports whether the registration is a community signup
// rather than an event registration.
func (r *Registration) IsCommunity() bool {
	return r.EventID == CommunityEventID
}
