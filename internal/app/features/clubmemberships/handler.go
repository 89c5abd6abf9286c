package clubmemberships

import (
	"context"
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
	"github.com/ridehubhq/ridehub/internal/app/system/timeouts"
	"github.com/ridehubhq/ridehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves joining and leaving clubs.
type Handler struct {
	Users       *userstore.Store
	Clubs       *clubstore.Store
	Memberships *membershipstore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       userstore.New(db),
		Clubs:       clubstore.New(db),
		Memberships: membershipstore.New(db),
		Log:         logger,
	}
}

type memberRequest struct {
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Reason string `json:"reason"`
}

// HandleJoin handles POST /club-memberships/{clubID}/join.
//
// The caller identifies the member by email or phone. The club must
// exist and be approved; a user already active in any club is turned
// away with the name of that club. The partial unique index settles
// concurrent joins: losers get the same conflict answer.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	clubID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "clubID"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid club id"))
		return
	}

	var req memberRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Phone) == "" {
		httpjson.Error(w, h.Log, apperr.Validation("email or phone is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.FindByEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFound("user"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	club, err := h.Clubs.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFound("club"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}
	if club.Status != models.ClubApproved {
		httpjson.Error(w, h.Log, apperr.Conflict("club not approved"))
		return
	}

	// Friendly precheck; the index decides races.
	if current, err := h.Memberships.ActiveByUser(ctx, user.ID); err == nil {
		httpjson.Error(w, h.Log, apperr.Conflict("you are already an active member of %s", current.ClubName))
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		httpjson.Error(w, h.Log, err)
		return
	}

	m, err := h.Memberships.Join(ctx, user.ID, *club, models.RoleMember)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("club joined",
		zap.String("club_id", club.ID.Hex()),
		zap.String("user_id", user.ID.Hex()))
	httpjson.OK(w, http.StatusCreated, "joined "+club.Name, m)
}

// HandleLeave handles POST /club-memberships/{clubID}/leave. The
// reason is mandatory; the exited row is kept as history.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	clubID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "clubID"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid club id"))
		return
	}

	var req memberRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Phone) == "" {
		httpjson.Error(w, h.Log, apperr.Validation("email or phone is required"))
		return
	}
	reason := htmlsanitize.StripTags(req.Reason)
	if reason == "" {
		httpjson.Error(w, h.Log, apperr.Validation("exit reason is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.FindByEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFound("user"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	m, err := h.Memberships.Leave(ctx, user.ID, clubID, reason)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("club left",
		zap.String("club_id", clubID.Hex()),
		zap.String("user_id", user.ID.Hex()))
	httpjson.OK(w, http.StatusOK, "left "+m.ClubName, m)
}
