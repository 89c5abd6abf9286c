package registrationstore_test

import (
	"testing"

	registrationstore "github.com/ridehubhq/ridehub/internal/app/store/registrations"
	"github.com/ridehubhq/ridehub/internal/app/system/apperr"
	"github.com/ridehubhq/ridehub/internal/app/system/indexes"
	"github.com/ridehubhq/ridehub/internal/domain/models"
	"github.com/ridehubhq/ridehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setup(t *testing.T) (*registrationstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return registrationstore.New(db), testutil.NewFixtures(t, db)
}

func TestStore_Insert(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID().Hex()
	reg := models.Registration{
		EventID:                eventID,
		FullName:               "  Dev   Patel ",
		Email:                  "Dev.Patel@Example.com",
		Phone:                  "900-010-2030",
		BikeRegistrationNumber: "MH12AB1234",
		LicenseNumber:          "DL-998877",
		RequestRidingGears:     true,
		RequestedGears:         models.RidingGears{Helmet: true, Gloves: true},
	}

	created, err := store.Insert(ctx, reg)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.FullName != "Dev Patel" {
		t.Errorf("FullName: got %q", created.FullName)
	}
	if created.Email != "dev.patel@example.com" {
		t.Errorf("Email: got %q", created.Email)
	}
	if created.Phone != "9000102030" {
		t.Errorf("Phone: got %q", created.Phone)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if !created.RequestedGears.Helmet || !created.RequestedGears.Gloves {
		t.Error("gear selection not preserved")
	}
}

func TestStore_Insert_DuplicateWithinEvent(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID().Hex()
	base := models.Registration{
		EventID:                eventID,
		FullName:               "Rider One",
		Email:                  "one@example.com",
		Phone:                  "1111111111",
		BikeRegistrationNumber: "KA01XY0001",
		LicenseNumber:          "LIC-0001",
	}
	if _, err := store.Insert(ctx, base); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}

	cases := []struct {
		name  string
		phone string
		mut   func(r *models.Registration)
		field string
	}{
		{"email", "2222220001", func(r *models.Registration) { r.Email = "ONE@example.com" }, "email"},
		{"phone", "2222220002", func(r *models.Registration) { r.Phone = "111 111 1111" }, "phone number"},
		{"bike", "2222220003", func(r *models.Registration) { r.BikeRegistrationNumber = "KA01XY0001" }, "bike registration number"},
		{"license", "2222220004", func(r *models.Registration) { r.LicenseNumber = "LIC-0001" }, "license number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := models.Registration{
				EventID:                eventID,
				FullName:               "Rider Two",
				Email:                  "two+" + tc.name + "@example.com",
				Phone:                  tc.phone,
				BikeRegistrationNumber: "TN02ZZ" + tc.name,
				LicenseNumber:          "LIC-2-" + tc.name,
			}
			tc.mut(&r)
			_, err := store.Insert(ctx, r)
			if err == nil {
				t.Fatal("expected duplicate error")
			}
			ae, ok := apperr.As(err)
			if !ok || ae.Kind != apperr.KindDuplicate {
				t.Fatalf("expected duplicate kind, got %v", err)
			}
			if ae.Field != tc.field {
				t.Errorf("Field: got %q, want %q", ae.Field, tc.field)
			}
		})
	}
}

func TestStore_Insert_SameIdentityAcrossEvents(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reg := models.Registration{
		FullName:               "Cross Event",
		Email:                  "cross@example.com",
		Phone:                  "4040404040",
		BikeRegistrationNumber: "GJ05AA1111",
		LicenseNumber:          "LIC-4040",
	}

	reg.EventID = primitive.NewObjectID().Hex()
	if _, err := store.Insert(ctx, reg); err != nil {
		t.Fatalf("first event Insert failed: %v", err)
	}

	// The same person is free to register for a different event.
	reg.EventID = primitive.NewObjectID().Hex()
	if _, err := store.Insert(ctx, reg); err != nil {
		t.Fatalf("second event Insert failed: %v", err)
	}
}

func TestStore_Insert_CommunityOmitsBikeAndLicense(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Two community signups without bike/license must not collide on
	// the partial unique indexes.
	for i, email := range []string{"c1@example.com", "c2@example.com"} {
		r := models.Registration{
			EventID:  models.CommunityEventID,
			FullName: "Community Rider",
			Email:    email,
			Phone:    []string{"5050505050", "6060606060"}[i],
		}
		if _, err := store.Insert(ctx, r); err != nil {
			t.Fatalf("community Insert %d failed: %v", i, err)
		}
	}
}

func TestStore_FindDuplicateField_PriorityOrder(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID().Hex()
	existing := models.Registration{
		EventID:                eventID,
		FullName:               "Taken",
		Email:                  "taken@example.com",
		Phone:                  "7070707070",
		BikeRegistrationNumber: "MH14CC9999",
		LicenseNumber:          "LIC-7070",
	}
	if _, err := store.Insert(ctx, existing); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// All four fields collide; email is reported first.
	clash := existing
	field, err := store.FindDuplicateField(ctx, clash)
	if err != nil {
		t.Fatalf("FindDuplicateField failed: %v", err)
	}
	if field != "email" {
		t.Errorf("field: got %q, want email", field)
	}

	// Email free, phone collides.
	clash.Email = "free@example.com"
	field, err = store.FindDuplicateField(ctx, clash)
	if err != nil {
		t.Fatalf("FindDuplicateField failed: %v", err)
	}
	if field != "phone number" {
		t.Errorf("field: got %q, want phone number", field)
	}

	// Only the license collides.
	clash.Phone = "8080808080"
	clash.BikeRegistrationNumber = "DL01DD0001"
	field, err = store.FindDuplicateField(ctx, clash)
	if err != nil {
		t.Fatalf("FindDuplicateField failed: %v", err)
	}
	if field != "license number" {
		t.Errorf("field: got %q, want license number", field)
	}

	// Nothing collides.
	clash.LicenseNumber = "LIC-8080"
	field, err = store.FindDuplicateField(ctx, clash)
	if err != nil {
		t.Fatalf("FindDuplicateField failed: %v", err)
	}
	if field != "" {
		t.Errorf("field: got %q, want empty", field)
	}
}

func TestStore_FindDuplicateField_SkipsEmptyOptionalFields(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	existing := models.Registration{
		EventID:  models.CommunityEventID,
		FullName: "Existing",
		Email:    "existing@example.com",
		Phone:    "9090909090",
	}
	if _, err := store.Insert(ctx, existing); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	candidate := models.Registration{
		EventID:  models.CommunityEventID,
		FullName: "Candidate",
		Email:    "candidate@example.com",
		Phone:    "1212121212",
	}
	field, err := store.FindDuplicateField(ctx, candidate)
	if err != nil {
		t.Fatalf("FindDuplicateField failed: %v", err)
	}
	if field != "" {
		t.Errorf("empty bike/license must not be treated as duplicates, got %q", field)
	}
}

func TestStore_ListByEvent(t *testing.T) {
	store, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	eventID := primitive.NewObjectID().Hex()
	fixtures.CreateRegistration(ctx, eventID, "r1@example.com", "1010101010")
	fixtures.CreateRegistration(ctx, eventID, "r2@example.com", "2020202020")
	fixtures.CreateRegistration(ctx, models.CommunityEventID, "r3@example.com", "3030303030")

	regs, err := store.ListByEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("ListByEvent failed: %v", err)
	}
	if len(regs) != 2 {
		t.Fatalf("ListByEvent: got %d, want 2", len(regs))
	}

	n, err := store.CountByEvent(ctx, models.CommunityEventID)
	if err != nil {
		t.Fatalf("CountByEvent failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountByEvent: got %d, want 1", n)
	}
}

func TestStore_Delete(t *testing.T) {
	store, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reg := fixtures.CreateRegistration(ctx, models.CommunityEventID, "gone@example.com", "6543210987")

	n, err := store.Delete(ctx, reg.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Delete: got %d, want 1", n)
	}
}
