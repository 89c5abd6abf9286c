// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/ridehubhq/ridehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data. Documents
// are inserted directly so store validation cannot get in the way of
// arranging a scenario.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a member user with the given identity.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, phone string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		Phone:        phone,
		PasswordHash: "$2a$10$fixturefixturefixturefixturefixturefixturefixturefix",
		Role:         "member",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateUserWithPassword inserts a member user with a real bcrypt hash
// so login flows can be exercised end to end.
func (f *Fixtures) CreateUserWithPassword(ctx context.Context, fullName, email, phone, passwordHash string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         "member",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateAdmin inserts an admin user with the given bcrypt hash.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email, passwordHash string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		Phone:        "9000000000",
		PasswordHash: passwordHash,
		Role:         "admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test admin: %v", err)
	}
	return u
}

// CreateEvent inserts an active event.
func (f *Fixtures) CreateEvent(ctx context.Context, title string) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Event{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: "Test event description",
		Location:    "Test Grounds",
		StartsAt:    now.Add(14 * 24 * time.Hour),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return e
}

// CreateClub inserts a club with the given status.
func (f *Fixtures) CreateClub(ctx context.Context, name, status string) models.Club {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Club{
		ID:     primitive.NewObjectID(),
		Name:   name,
		Status: status,
		Founder: models.ClubContact{
			Name:  "Founder " + name,
			Email: "founder@" + strings.ReplaceAll(strings.ToLower(name), " ", "-") + ".test",
			Phone: "9111111111",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("clubs").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test club: %v", err)
	}
	return c
}

// CreateActiveMembership links a user to a club with status=active.
func (f *Fixtures) CreateActiveMembership(ctx context.Context, userID primitive.ObjectID, club models.Club, role string) models.ClubMembership {
	f.t.Helper()

	m := models.ClubMembership{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		ClubID:   club.ID,
		ClubName: club.Name,
		Role:     role,
		Status:   models.MembershipActive,
		JoinedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("club_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateRegistration inserts a registration document directly.
func (f *Fixtures) CreateRegistration(ctx context.Context, eventID, email, phone string) models.Registration {
	f.t.Helper()

	r := models.Registration{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		FullName:  "Test Rider",
		Email:     email,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("registrations").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test registration: %v", err)
	}
	return r
}
