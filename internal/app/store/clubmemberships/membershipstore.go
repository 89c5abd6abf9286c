package membershipstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/ridehubhq/ridehub/internal/app/system/apperr"
	"github.com/ridehubhq/ridehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("club_memberships")}
}

// ActiveByUser returns the user's single active membership, or
// mongo.ErrNoDocuments when they are not in any club.
func (s *Store) ActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.ClubMembership, error) {
	var m models.ClubMembership
	filter := bson.M{"user_id": userID, "status": models.MembershipActive}
	if err := s.c.FindOne(ctx, filter).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Join inserts a fresh active membership row. The partial unique index
// on (user_id, status=active) is the authority on "one club at a
// time"; losing a race to it comes back as a conflict naming the club
// the caller is already in.
func (s *Store) Join(ctx context.Context, userID primitive.ObjectID, club models.Club, role string) (models.ClubMembership, error) {
	m := models.ClubMembership{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		ClubID:   club.ID,
		ClubName: club.Name,
		Role:     role,
		Status:   models.MembershipActive,
		JoinedAt: time.Now(),
	}

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ClubMembership{}, s.alreadyMemberErr(ctx, userID)
		}
		return models.ClubMembership{}, err
	}
	return m, nil
}

// Leave flips the user's active membership in the given club to
// exited, stamping the exit time and reason. The row is kept as
// history; a later re-join inserts a new row. When the user has no
// active membership in that club the result is a not-found error.
func (s *Store) Leave(ctx context.Context, userID, clubID primitive.ObjectID, reason string) (*models.ClubMembership, error) {
	now := time.Now()
	filter := bson.M{
		"user_id": userID,
		"club_id": clubID,
		"status":  models.MembershipActive,
	}
	update := bson.M{"$set": bson.M{
		"status":      models.MembershipExited,
		"exited_at":   now,
		"exit_reason": reason,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.ClubMembership
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("active membership in this club")
		}
		return nil, err
	}
	return &m, nil
}

// Roster returns the active memberships of one club, longest-standing
// first.
func (s *Store) Roster(ctx context.Context, clubID primitive.ObjectID) ([]models.ClubMembership, error) {
	filter := bson.M{"club_id": clubID, "status": models.MembershipActive}
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	members := []models.ClubMembership{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// HistoryByUser returns every membership row the user has ever had,
// newest join first. Exited rows are audit records and never deleted.
func (s *Store) HistoryByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ClubMembership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rows := []models.ClubMembership{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// alreadyMemberErr builds the conflict message for a rejected join,
// naming the club the user is already in when it can be read back.
func (s *Store) alreadyMemberErr(ctx context.Context, userID primitive.ObjectID) error {
	current, err := s.ActiveByUser(ctx, userID)
	if err != nil {
		return apperr.Conflict("you are already an active member of a club")
	}
	return apperr.Conflict("you are already an active member of %s", current.ClubName)
}
