// internal/domain/models/clubmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership statuses. Exited is terminal: a re-join creates a fresh
// row and the exited row stays forever as an audit record.
const (
	MembershipActive = "active"
	MembershipExited = "exited"
)

// Membership roles.
const (
	RoleFounder   = "founder"
	RoleCoFounder = "co-founder"
	RoleAdmin     = "admin"
	RoleCoAdmin   = "co-admin"
	RoleMember    = "member"
)

// ValidMembershipRole reports whether role is one of the allowed roles.
func ValidMembershipRole(role string) bool {
	switch role {
	case RoleFounder, RoleCoFounder, RoleAdmin, RoleCoAdmin, RoleMember:
		return true
	}
	return false
}

// ClubMembership links one user to one club. A partial unique index on
// (user_id) filtered to status=active guarantees at most one active
// membership per user at any instant.
type ClubMembership struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	ClubID   primitive.ObjectID `bson:"club_id" json:"club_id"`
	ClubName string             `bson:"club_name" json:"club_name"` // denormalized for error messages and listings
	Role     string             `bson:"role" json:"role"`
	Status   string             `bson:"status" json:"status"`

	JoinedAt   time.Time  `bson:"joined_at" json:"joined_at"`
	ExitedAt   *time.Time `bson:"exited_at,omitempty" json:"exited_at,omitempty"`
	ExitReason string     `bson:"exit_reason,omitempty" json:"exit_reason,omitempty"`
}
