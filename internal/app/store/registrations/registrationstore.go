package registrationstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/ridehubhq/ridehub/internal/app/system/apperr"
	"github.com/ridehubhq/ridehub/internal/app/system/indexes"
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
	return &Store{c: db.Collection("registrations")}
}

// GetByID loads a registration by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Registration, error) {
	var r models.Registration
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// FindDuplicateField checks the identity fields of r against existing
// registrations for the same event, in reporting priority order:
// email, phone number, bike registration number, license number.
// It returns the human name of the first field already taken, or ""
// when all are free. Empty bike/license values are never checked, so
// community signups only contend on email and phone.
//
// This is the friendly precheck. The unique indexes remain the
// authority; Insert maps a lost race to the same field names.
func (s *Store) FindDuplicateField(ctx context.Context, r models.Registration) (string, error) {
	checks := []struct {
		field string
		key   string
		value string
	}{
		{"email", "email", normalize.Email(r.Email)},
		{"phone number", "phone", normalize.Phone(r.Phone)},
		{"bike registration number", "bike_registration_number", r.BikeRegistrationNumber},
		{"license number", "license_number", r.LicenseNumber},
	}

	for _, chk := range checks {
		if chk.value == "" {
			continue
		}
		err := s.c.FindOne(ctx, bson.M{"event_id": r.EventID, chk.key: chk.value}).Err()
		if err == nil {
			return chk.field, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return "", err
		}
	}
	return "", nil
}

// Insert writes a new registration. Identity fields are normalized
// here so the stored values are exactly what the unique indexes
// compare. A duplicate-key rejection is translated back to the
// violated field so callers who lost a race still get the same answer
// FindDuplicateField would have given.
func (s *Store) Insert(ctx context.Context, r models.Registration) (models.Registration, error) {
	r.ID = primitive.NewObjectID()
	r.FullName = normalize.Name(r.FullName)
	r.Email = normalize.Email(r.Email)
	r.Phone = normalize.Phone(r.Phone)
	r.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Registration{}, dupError(err)
		}
		return models.Registration{}, err
	}
	return r, nil
}

// ListByEvent returns registrations for one event, oldest first.
// eventID is an event ObjectID hex or the community sentinel.
func (s *Store) ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	regs := []models.Registration{}
	if err := cur.All(ctx, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// CountByEvent reports how many registrations an event has.
func (s *Store) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID})
}

// Delete removes a registration by ID. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByEvent removes every registration for one event. Used when an
// admin deletes the event itself.
func (s *Store) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func dupError(err error) error {
	switch indexes.ViolatedIndex(err) {
	case indexes.UniqRegsEventEmail:
		return apperr.Duplicate("email")
	case indexes.UniqRegsEventPhone:
		return apperr.Duplicate("phone number")
	case indexes.UniqRegsEventBikeReg:
		return apperr.Duplicate("bike registration number")
	case indexes.UniqRegsEventLicense:
		return apperr.Duplicate("license number")
	}
	return apperr.Duplicate("registration detail")
}
