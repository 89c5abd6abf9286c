// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Index names for the invariant-bearing uniques. The registration
// store maps a storage-level E11000 back to the violated field through
// these names, so they are part of the duplicate-reporting contract,
// not just labels.
const (
	UniqUsersEmail = "uniq_users_email"
	UniqUsersPhone = "uniq_users_phone"

	UniqRegsEventEmail   = "uniq_regs_event_email"
	UniqRegsEventPhone   = "uniq_regs_event_phone"
	UniqRegsEventBikeReg = "uniq_regs_event_bikereg"
	UniqRegsEventLicense = "uniq_regs_event_license"

	UniqClubsName = "uniq_clubs_name"

	UniqMembershipUserActive = "uniq_cm_user_active"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Problems are aggregated so every broken collection is visible and
startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureEvents(ctx, db); err != nil {
		problems = append(problems, "events: "+err.Error())
	}
	if err := ensureRegistrations(ctx, db); err != nil {
		problems = append(problems, "registrations: "+err.Error())
	}
	if err := ensureClubs(ctx, db); err != nil {
		problems = append(problems, "clubs: "+err.Error())
	}
	if err := ensureClubMemberships(ctx, db); err != nil {
		problems = append(problems, "club_memberships: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[desiredSig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) && (desiredName == "" || ex.Name == desiredName) {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}
			// Name or options drifted (e.g. upgrading to unique, or a
			// rename). Drop and recreate under the desired definition.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors).
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// ViolatedIndex returns the name of the unique index an E11000 error
// reports, or "" when the error is not a duplicate-key error or the
// server did not include the index name. Stores use this to turn a
// storage-level conflict back into a field-level duplicate message.
func ViolatedIndex(err error) string {
	if err == nil {
		return ""
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				if name := indexNameFromMessage(e.Message); name != "" {
					return name
				}
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return indexNameFromMessage(ce.Message)
	}
	return indexNameFromMessage(err.Error())
}

// E11000 messages look like:
// "E11000 duplicate key error collection: db.regs index: uniq_regs_event_email dup key: ..."
func indexNameFromMessage(msg string) string {
	const marker = "index: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email and phone each identify a user globally.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqUsersEmail),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqUsersPhone),
		},
		// Admin listing: role filter with stable name sort.
		{
			Keys: bson.D{
				{Key: "role", Value: 1},
				{Key: "full_name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_role_fullnameci_id"),
		},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Public listing: active events by start time.
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "starts_at", Value: 1}},
			Options: options.Index().SetName("idx_events_active_startsat"),
		},
		{
			Keys:    bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_events_titleci__id"),
		},
	})
}

func ensureRegistrations(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("registrations")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Four independent event-scoped uniques. Email and phone are
		// required on every registration; bike registration and
		// license numbers only exist on event registrations, so those
		// two are partial (present and non-empty) to leave community
		// signups unconstrained.
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqRegsEventEmail),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqRegsEventPhone),
		},
		{
			Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "bike_registration_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqRegsEventBikeReg).
				SetPartialFilterExpression(bson.M{"bike_registration_number": bson.M{"$exists": true, "$gt": ""}}),
		},
		{
			Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "license_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqRegsEventLicense).
				SetPartialFilterExpression(bson.M{"license_number": bson.M{"$exists": true, "$gt": ""}}),
		},
		// Admin listing per event, newest first.
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_regs_event_created"),
		},
	})
}

func ensureClubs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("clubs")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Club names are unique case-sensitively on the trimmed value,
		// so the index is on name itself rather than a folded name_ci.
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqClubsName),
		},
		// Public/admin listings by status.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_clubs_status_name__id"),
		},
	})
}

func ensureClubMemberships(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("club_memberships")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// At most one active membership per user. The partial filter
		// keeps the unlimited history of exited rows out of the
		// constraint.
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqMembershipUserActive).
				SetPartialFilterExpression(bson.M{"status": "active"}),
		},
		// Roster and history lookups.
		{
			Keys:    bson.D{{Key: "club_id", Value: 1}, {Key: "status", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_cm_club_status_user"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}, {Key: "club_id", Value: 1}},
			Options: options.Index().SetName("idx_cm_user_status_club"),
		},
	})
}
