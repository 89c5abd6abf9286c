package clubs_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ridehubhq/ridehub/internal/app/features/clubs"
	"github.com/ridehubhq/ridehub/internal/app/system/indexes"
	"github.com/ridehubhq/ridehub/internal/domain/models"
	"github.com/ridehubhq/ridehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*clubs.Handler, *testutil.FakeMedia, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	fake := testutil.NewFakeMedia()
	return clubs.NewHandler(db, fake, nil, zap.NewNop()), fake, testutil.NewFixtures(t, db)
}

func clubFields(name string) map[string]string {
	return map[string]string{
		"name":         name,
		"description":  "A riding club.",
		"founderName":  "Founder Person",
		"founderEmail": "founder@example.com",
		"founderPhone": "9112233445",
	}
}

func patchStatus(t *testing.T, h *clubs.Handler, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("PATCH", "/clubs/"+id+"/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()
	h.HandleUpdateStatus(rec, req)
	return rec
}

func TestHandleCreate(t *testing.T) {
	h, fake, _ := newHandler(t)

	logo := testutil.FilePart{Field: "logo", Filename: "logo.png", Content: []byte("pngbytes")}
	req := testutil.NewMultipartRequest(t, "POST", "/clubs", clubFields("Trail Blazers"), logo)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	if len(fake.Uploads) != 1 {
		t.Errorf("uploads: got %d, want 1", len(fake.Uploads))
	}

	var env struct {
		Data models.Club `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if env.Data.Status != models.ClubPending {
		t.Errorf("status: got %q, want pending", env.Data.Status)
	}
	if env.Data.Logo == nil {
		t.Error("expected logo reference")
	}
}

func TestHandleCreate_NameRequired(t *testing.T) {
	h, _, _ := newHandler(t)

	fields := clubFields("  ")
	req := testutil.NewMultipartRequest(t, "POST", "/clubs", fields)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleCreate_DuplicateName(t *testing.T) {
	h, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateClub(ctx, "Taken Name", models.ClubPending)

	req := testutil.NewMultipartRequest(t, "POST", "/clubs", clubFields(" Taken Name "))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleCreate_AdminsJSONString(t *testing.T) {
	h, _, _ := newHandler(t)

	fields := clubFields("Admins Club")
	fields["admins"] = `[{"name":"Second Admin","email":"second@example.com","phone":"9223344556"}]`
	req := testutil.NewMultipartRequest(t, "POST", "/clubs", fields)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var env struct {
		Data models.Club `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(env.Data.Admins) != 1 || env.Data.Admins[0].Email != "second@example.com" {
		t.Errorf("admins: got %+v", env.Data.Admins)
	}
}

func TestHandleCreate_MalformedAdminsIgnored(t *testing.T) {
	h, _, _ := newHandler(t)

	fields := clubFields("Broken Admins Club")
	fields["admins"] = `{oops`
	req := testutil.NewMultipartRequest(t, "POST", "/clubs", fields)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("malformed admins must not fail the request: got %d", rec.Code)
	}
	var env struct {
		Data models.Club `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(env.Data.Admins) != 0 {
		t.Errorf("admins should be empty, got %+v", env.Data.Admins)
	}
}

func TestHandleUpdateStatus_ApproveListsPublicly(t *testing.T) {
	h, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Soon Public", models.ClubPending)

	// Pending clubs are not publicly listed.
	rec := httptest.NewRecorder()
	h.HandleListApproved(rec, httptest.NewRequest("GET", "/clubs", nil))
	var listEnv struct {
		Data []models.Club `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listEnv); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(listEnv.Data) != 0 {
		t.Fatalf("pending club must not be listed, got %d", len(listEnv.Data))
	}

	rec = patchStatus(t, h, club.ID.Hex(), `{"status":"approved"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: got %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.HandleListApproved(rec, httptest.NewRequest("GET", "/clubs", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &listEnv); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(listEnv.Data) != 1 || listEnv.Data[0].Name != "Soon Public" {
		t.Errorf("approved club missing from public listing: %+v", listEnv.Data)
	}
}

func TestHandleUpdateStatus_InvalidStatus(t *testing.T) {
	h, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Fruit Club", models.ClubPending)

	rec := patchStatus(t, h, club.ID.Hex(), `{"status":"banana"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleUpdateStatus_MissingClub(t *testing.T) {
	h, _, _ := newHandler(t)

	rec := patchStatus(t, h, primitive.NewObjectID().Hex(), `{"status":"approved"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
}

func TestHandleUpdateStatus_ApprovalSeatsFounder(t *testing.T) {
	h, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	club := fixtures.CreateClub(ctx, "Founder Club", models.ClubPending)
	founder := fixtures.CreateUser(ctx, "Founder User", club.Founder.Email, "9554433221")

	rec := patchStatus(t, h, club.ID.Hex(), `{"status":"approved"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: got %d (body %s)", rec.Code, rec.Body.String())
	}

	m, err := h.Memberships.ActiveByUser(ctx, founder.ID)
	if err != nil {
		t.Fatalf("expected founder membership, got %v", err)
	}
	if m.Role != models.RoleFounder || m.ClubID != club.ID {
		t.Errorf("unexpected membership: %+v", m)
	}
}

func TestHandleUpdateStatus_ApprovalSkipsBusyFounder(t *testing.T) {
	h, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	other := fixtures.CreateClub(ctx, "Other Club", models.ClubApproved)
	club := fixtures.CreateClub(ctx, "Second Venture", models.ClubPending)
	founder := fixtures.CreateUser(ctx, "Busy Founder", club.Founder.Email, "9667788990")
	fixtures.CreateActiveMembership(ctx, founder.ID, other, models.RoleMember)

	rec := patchStatus(t, h, club.ID.Hex(), `{"status":"approved"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("approval must succeed even when the founder is busy: %d", rec.Code)
	}

	m, err := h.Memberships.ActiveByUser(ctx, founder.ID)
	if err != nil {
		t.Fatalf("ActiveByUser failed: %v", err)
	}
	if m.ClubID != other.ID {
		t.Errorf("founder's existing membership must stand, got %+v", m)
	}
}

func TestHandleListAll(t *testing.T) {
	h, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateClub(ctx, "P Club", models.ClubPending)
	fixtures.CreateClub(ctx, "A Club", models.ClubApproved)
	fixtures.CreateClub(ctx, "R Club", models.ClubRejected)

	rec := httptest.NewRecorder()
	h.HandleListAll(rec, httptest.NewRequest("GET", "/clubs/all", nil))

	var env struct {
		Data []models.Club `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(env.Data) != 3 {
		t.Errorf("all clubs: got %d, want 3", len(env.Data))
	}
}
