package clubs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	membershipstore "github.com/ridehubhq/ridehub/internal/app/store/clubmemberships"
	clubstore "github.com/ridehubhq/ridehub/internal/app/store/clubs"
	userstore "github.com/ridehubhq/ridehub/internal/app/store/users"
	"github.com/ridehubhq/ridehub/internal/app/system/apperr"
	"github.com/ridehubhq/ridehub/internal/app/system/htmlsanitize"
	"github.com/ridehubhq/ridehub/internal/app/system/httpjson"
	"github.com/ridehubhq/ridehub/internal/app/system/media"
	"github.com/ridehubhq/ridehub/internal/app/system/notify"
	"github.com/ridehubhq/ridehub/internal/app/system/timeouts"
	"github.com/ridehubhq/ridehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves club collaboration requests and status moderation.
type Handler struct {
	Clubs       *clubstore.Store
	Users       *userstore.Store
	Memberships *membershipstore.Store
	Media       media.Store
	Notifier    *notify.Publisher
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, mediaStore media.Store, notifier *notify.Publisher, logger *zap.Logger) *Handler {
	return &Handler{
		Clubs:       clubstore.New(db),
		Users:       userstore.New(db),
		Memberships: membershipstore.New(db),
		Media:       mediaStore,
		Notifier:    notifier,
		Log:         logger,
	}
}

// HandleCreate handles POST /clubs (multipart). Anyone can file a
// collaboration request; the club starts out pending until an admin
// moves it.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid form data"))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		httpjson.Error(w, h.Log, apperr.Validation("club name is required"))
		return
	}

	club := models.Club{
		Name:        name,
		Description: htmlsanitize.StripTags(r.FormValue("description")),
		Founder: models.ClubContact{
			Name:  strings.TrimSpace(r.FormValue("founderName")),
			Email: strings.TrimSpace(r.FormValue("founderEmail")),
			Phone: strings.TrimSpace(r.FormValue("founderPhone")),
		},
		Admins: decodeAdmins(r.FormValue("admins"), h.Log),
	}
	if club.Founder.Name == "" || club.Founder.Email == "" {
		httpjson.Error(w, h.Log, apperr.Validation("founder name and email are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// Friendly precheck; the unique index on name decides races.
	exists, err := h.Clubs.NameExists(ctx, name)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if exists {
		httpjson.Error(w, h.Log, apperr.Duplicate("club name"))
		return
	}

	if file, header, fileErr := r.FormFile("logo"); fileErr == nil && header != nil && header.Size > 0 {
		defer file.Close()
		obj, err := h.Media.Upload(ctx, "club-logos", header.Filename,
			header.Header.Get("Content-Type"), file, header.Size)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.Upstream("logo upload failed", err))
			return
		}
		club.Logo = &models.ImageRef{Key: obj.Key, URL: obj.URL}
	}

	created, err := h.Clubs.Create(ctx, club)
	if err != nil {
		if club.Logo != nil {
			if delErr := h.Media.Delete(ctx, club.Logo.Key); delErr != nil {
				h.Log.Warn("club: orphaned logo not deleted",
					zap.String("key", club.Logo.Key), zap.Error(delErr))
			}
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("club request filed",
		zap.String("id", created.ID.Hex()),
		zap.String("name", created.Name))
	httpjson.OK(w, http.StatusCreated, "club request submitted", created)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus handles PATCH /clubs/{id}/status (admin). Moving
// a club to approved also tries to seat the founder: if their contact
// email or phone resolves to an existing user with no active
// membership, a founder-role row is created. That step is best-effort
// and never fails the approval.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid club id"))
		return
	}

	var req statusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid request body"))
		return
	}
	status := strings.TrimSpace(req.Status)
	if !models.ValidClubStatus(status) {
		httpjson.Error(w, h.Log, apperr.Validation("invalid status"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	club, err := h.Clubs.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFound("club"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	if status == models.ClubApproved {
		h.seatFounder(ctx, club)
	}

	h.Notifier.Publish(ctx, notify.ClubStatusChanged, map[string]any{
		"club_id": club.ID.Hex(),
		"name":    club.Name,
		"status":  club.Status,
	})

	h.Log.Info("club status changed",
		zap.String("id", club.ID.Hex()),
		zap.String("status", club.Status))
	httpjson.OK(w, http.StatusOK, "club status updated", club)
}

// HandleListApproved handles GET /clubs (public).
func (h *Handler) HandleListApproved(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	clubs, err := h.Clubs.ListApproved(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, "clubs", clubs)
}

// HandleListAll handles GET /clubs/all (admin).
func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	clubs, err := h.Clubs.ListAll(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, "clubs", clubs)
}

// seatFounder gives the founder an active founder-role membership when
// their contact resolves to a user who is not in a club yet. Every
// failure is logged and swallowed.
func (h *Handler) seatFounder(ctx context.Context, club *models.Club) {
	user, err := h.Users.FindByEmailOrPhone(ctx, club.Founder.Email, club.Founder.Phone)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Warn("club approval: founder lookup failed",
				zap.String("club_id", club.ID.Hex()), zap.Error(err))
		}
		return
	}

	if _, err := h.Memberships.ActiveByUser(ctx, user.ID); err == nil {
		return // already in a club, leave them be
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		h.Log.Warn("club approval: founder membership check failed",
			zap.String("club_id", club.ID.Hex()), zap.Error(err))
		return
	}

	if _, err := h.Memberships.Join(ctx, user.ID, *club, models.RoleFounder); err != nil {
		h.Log.Warn("club approval: founder membership not created",
			zap.String("club_id", club.ID.Hex()),
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err))
		return
	}
	h.Log.Info("founder membership created",
		zap.String("club_id", club.ID.Hex()),
		zap.String("user_id", user.ID.Hex()))
}

// decodeAdmins decodes the optional admins list, which may arrive as a
// JSON-encoded string. A parse failure means no admins; logged, never
// an error.
func decodeAdmins(raw string, log *zap.Logger) []models.ClubContact {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var admins []models.ClubContact
	if err := json.Unmarshal([]byte(raw), &admins); err != nil {
		log.Warn("club: malformed admins list ignored", zap.Error(err))
		return nil
	}
	return admins
}
