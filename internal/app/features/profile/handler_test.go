package profile_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ridehubhq/ridehub/internal/app/features/profile"
	userstore "github.com/ridehubhq/ridehub/internal/app/store/users"
	"github.com/ridehubhq/ridehub/internal/app/system/authutil"
	"github.com/ridehubhq/ridehub/internal/app/system/indexes"
	"github.com/ridehubhq/ridehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*profile.Handler, *testutil.FakeMedia, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	fake := testutil.NewFakeMedia()
	h := profile.NewHandler(db, fake, zap.NewNop())
	return h, fake, testutil.NewFixtures(t, db)
}

func profileFields() map[string]string {
	return map[string]string{
		"fullName":               "New   Rider",
		"email":                  "New.Rider@Example.COM",
		"phone":                  "987-654-3210",
		"password":               "sufficiently-long-pw",
		"address":                "7 Ridge Road",
		"emergencyContactName":   "Next Of Kin",
		"emergencyContactPhone":  "9123456780",
		"bikeMake":               "Royal Enfield",
		"bikeModel":              "Interceptor 650",
		"bikeRegistrationNumber": "KA05BB2222",
		"licenseNumber":          "DL-4411",
	}
}

func failMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return env.Message
}

func TestHandleCreate_NormalizesAndHashes(t *testing.T) {
	h, _, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewMultipartRequest(t, "POST", "/profile", profileFields())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	store := userstore.New(fx.DB())
	u, err := store.GetByEmail(ctx, "new.rider@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if u.FullName != "New Rider" {
		t.Errorf("FullName: got %q, want %q", u.FullName, "New Rider")
	}
	if u.Phone != "9876543210" {
		t.Errorf("Phone: got %q, want digits only", u.Phone)
	}
	if u.Role != "member" {
		t.Errorf("Role: got %q, want member", u.Role)
	}
	if u.PasswordHash == "" || u.PasswordHash == "sufficiently-long-pw" {
		t.Errorf("PasswordHash: got %q, want bcrypt hash", u.PasswordHash)
	}
	if !authutil.CheckPassword("sufficiently-long-pw", u.PasswordHash) {
		t.Error("stored hash does not verify against the submitted password")
	}
}

func TestHandleCreate_WithImages(t *testing.T) {
	h, fake, _ := newHandler(t)

	req := testutil.NewMultipartRequest(t, "POST", "/profile", profileFields(),
		testutil.FilePart{Field: "profileImage", Filename: "me.jpg", Content: []byte("selfie")},
		testutil.FilePart{Field: "licenseImage", Filename: "dl.jpg", Content: []byte("license")},
	)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if len(fake.Uploads) != 2 {
		t.Fatalf("uploads: got %d, want 2", len(fake.Uploads))
	}
	if !strings.HasPrefix(fake.Uploads[0], "profiles/") {
		t.Errorf("first upload folder: got %q, want profiles/", fake.Uploads[0])
	}
	if !strings.HasPrefix(fake.Uploads[1], "licenses/") {
		t.Errorf("second upload folder: got %q, want licenses/", fake.Uploads[1])
	}
}

func TestHandleCreate_MissingRequiredField(t *testing.T) {
	h, _, _ := newHandler(t)

	fields := profileFields()
	delete(fields, "emergencyContactPhone")
	req := testutil.NewMultipartRequest(t, "POST", "/profile", fields)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if msg := failMessage(t, rec); !strings.Contains(msg, "emergency contact phone") {
		t.Errorf("message: got %q, want mention of emergency contact phone", msg)
	}
}

func TestHandleCreate_ShortPassword(t *testing.T) {
	h, _, _ := newHandler(t)

	fields := profileFields()
	fields["password"] = "short"
	req := testutil.NewMultipartRequest(t, "POST", "/profile", fields)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleCreate_BadPhone(t *testing.T) {
	h, _, _ := newHandler(t)

	fields := profileFields()
	fields["phone"] = "12345"
	req := testutil.NewMultipartRequest(t, "POST", "/profile", fields)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if msg := failMessage(t, rec); !strings.Contains(msg, "10 digits") {
		t.Errorf("message: got %q, want 10 digits complaint", msg)
	}
}

func TestHandleCreate_DuplicateEmail(t *testing.T) {
	h, _, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "First Rider", "new.rider@example.com", "9000000001")

	req := testutil.NewMultipartRequest(t, "POST", "/profile", profileFields())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
	if msg := failMessage(t, rec); !strings.Contains(msg, "email") {
		t.Errorf("message: got %q, want email duplicate", msg)
	}
}

func TestHandleUpdate_PartialOverwrite(t *testing.T) {
	h, _, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Settled Rider", "settled@example.com", "9000000005")

	req := testutil.NewMultipartRequest(t, "PUT", "/profile", map[string]string{
		"address":  "99 New Street",
		"bikeMake": "Triumph",
	})
	req = testutil.WithUser(req, testutil.MemberTokenUser(u.ID))
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	store := userstore.New(fx.DB())
	after, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if after.Address != "99 New Street" {
		t.Errorf("Address: got %q, want overwrite", after.Address)
	}
	if after.BikeMake != "Triumph" {
		t.Errorf("BikeMake: got %q, want Triumph", after.BikeMake)
	}
	if after.Email != "settled@example.com" {
		t.Errorf("Email: got %q, want untouched", after.Email)
	}
	if after.FullName != u.FullName {
		t.Errorf("FullName: got %q, want untouched %q", after.FullName, u.FullName)
	}
}

func TestHandleUpdate_ImageReplacementDeletesOld(t *testing.T) {
	h, fake, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Photo Rider", "photo@example.com", "9000000006")

	first := testutil.NewMultipartRequest(t, "PUT", "/profile", nil,
		testutil.FilePart{Field: "profileImage", Filename: "v1.jpg", Content: []byte("one")})
	first = testutil.WithUser(first, testutil.MemberTokenUser(u.ID))
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first update: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	firstKey := fake.Uploads[0]

	second := testutil.NewMultipartRequest(t, "PUT", "/profile", nil,
		testutil.FilePart{Field: "profileImage", Filename: "v2.jpg", Content: []byte("two")})
	second = testutil.WithUser(second, testutil.MemberTokenUser(u.ID))
	rec = httptest.NewRecorder()
	h.HandleUpdate(rec, second)
	if rec.Code != http.StatusOK {
		t.Fatalf("second update: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	if len(fake.Deletes) != 1 || fake.Deletes[0] != firstKey {
		t.Errorf("deletes: got %v, want [%s]", fake.Deletes, firstKey)
	}

	store := userstore.New(fx.DB())
	after, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if after.ProfileImage == nil || after.ProfileImage.Key == firstKey {
		t.Errorf("ProfileImage: got %+v, want the replacement object", after.ProfileImage)
	}
}

func TestHandleUpdate_BadPhoneRejected(t *testing.T) {
	h, _, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Strict Rider", "strict@example.com", "9000000007")

	req := testutil.NewMultipartRequest(t, "PUT", "/profile", map[string]string{
		"phone": "abc",
	})
	req = testutil.WithUser(req, testutil.MemberTokenUser(u.ID))
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleUpdate_WithoutToken(t *testing.T) {
	h, _, _ := newHandler(t)

	req := testutil.NewMultipartRequest(t, "PUT", "/profile", map[string]string{
		"address": "nowhere",
	})
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
}

func TestHandleUpdate_UnknownUser(t *testing.T) {
	h, _, _ := newHandler(t)

	req := testutil.NewMultipartRequest(t, "PUT", "/profile", map[string]string{
		"address": "ghost town",
	})
	req = testutil.WithUser(req, testutil.MemberTokenUser(primitive.NewObjectID()))
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
}
