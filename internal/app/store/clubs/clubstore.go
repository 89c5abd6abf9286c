package clubstore

import (
	"context"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/ridehubhq/ridehub/internal/app/system/apperr"
	"github.com/ridehubhq/ridehub/internal/app/system/normalize"
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
	return &Store{c: db.Collection("clubs")}
}

// GetByID loads a club by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Club, error) {
	var club models.Club
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&club); err != nil {
		return nil, err
	}
	return &club, nil
}

// NameExists reports whether a club with exactly this trimmed name
// already exists. Club names compare case-sensitively.
func (s *Store) NameExists(ctx context.Context, name string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"name": strings.TrimSpace(name)}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Create inserts a new club in pending status. The founder's contact
// details are normalized; the name is trimmed but keeps its case,
// matching the unique index.
func (s *Store) Create(ctx context.Context, club models.Club) (models.Club, error) {
	club.ID = primitive.NewObjectID()
	club.Name = strings.TrimSpace(club.Name)
	club.Status = models.ClubPending
	club.Founder = normalizeContact(club.Founder)
	for i, a := range club.Admins {
		club.Admins[i] = normalizeContact(a)
	}

	now := time.Now()
	club.CreatedAt = now
	club.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, club); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Club{}, apperr.Duplicate("club name")
		}
		return models.Club{}, err
	}
	return club, nil
}

// UpdateStatus moves a club to the given status and returns the
// updated document. Status validity is the caller's concern.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Club, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return s.GetByID(ctx, id)
}

// ListApproved returns approved clubs sorted by name. Public listing.
func (s *Store) ListApproved(ctx context.Context) ([]models.Club, error) {
	return s.list(ctx, bson.M{"status": models.ClubApproved})
}

// ListAll returns every club regardless of status. Admin dashboard view.
func (s *Store) ListAll(ctx context.Context) ([]models.Club, error) {
	return s.list(ctx, bson.M{})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Club, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	clubs := []models.Club{}
	if err := cur.All(ctx, &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}

func normalizeContact(c models.ClubContact) models.ClubContact {
	c.Name = normalize.Name(c.Name)
	c.Email = normalize.Email(c.Email)
	c.Phone = normalize.Phone(c.Phone)
	return c
}
