// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a rider profile plus the admin accounts.
//
// NOTE:
//   - Club membership is not embedded on User.
//     Use the club_memberships collection to discover a user's club.
//   - Email and phone are each globally unique.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone" json:"phone"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // admin | member

	Address              string `bson:"address,omitempty" json:"address,omitempty"`
	EmergencyContactName string `bson:"emergency_contact_name,omitempty" json:"emergency_contact_name,omitempty"`
	EmergencyContact     string `bson:"emergency_contact_phone,omitempty" json:"emergency_contact_phone,omitempty"`

	BikeMake               string `bson:"bike_make,omitempty" json:"bike_make,omitempty"`
	BikeModel              string `bson:"bike_model,omitempty" json:"bike_model,omitempty"`
	BikeRegistrationNumber string `bson:"bike_registration_number,omitempty" json:"bike_registration_number,omitempty"`
	LicenseNumber          string `bson:"license_number,omitempty" json:"license_number,omitempty"`

	ProfileImage *ImageRef `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	LicenseImage *ImageRef `bson:"license_image,omitempty" json:"license_image,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ImageRef is what the external media host hands back for an upload:
// a stable public URL plus the key needed to delete the object later.
// The application never touches image bytes beyond forwarding them.
type ImageRef struct {
	Key string `bson:"key" json:"key"`
	URL string `bson:"url" json:"url"`
}
