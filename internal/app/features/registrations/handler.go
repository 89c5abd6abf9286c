package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	registrationstore "github.com/ridehubhq/ridehub/internal/app/store/registrations"
	"github.com/ridehubhq/ridehub/internal/app/system/apperr"
	"github.com/ridehubhq/ridehub/internal/app/system/htmlsanitize"
	"github.com/ridehubhq/ridehub/internal/app/system/httpjson"
	"github.com/ridehubhq/ridehub/internal/app/system/inputval"
	"github.com/ridehubhq/ridehub/internal/app/system/media"
	"github.com/ridehubhq/ridehub/internal/app/system/notify"
	"github.com/ridehubhq/ridehub/internal/app/system/timeouts"
	"github.com/ridehubhq/ridehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves event and community registrations.
type Handler struct {
	Regs     *registrationstore.Store
	Media    media.Store
	Notifier *notify.Publisher
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, mediaStore media.Store, notifier *notify.Publisher, logger *zap.Logger) *Handler {
	return &Handler{
		Regs:     registrationstore.New(db),
		Media:    mediaStore,
		Notifier: notifier,
		Log:      logger,
	}
}

// HandleCreate handles POST /registrations (multipart).
//
// Checks run in a fixed order and the first violation is the reported
// one: licence image presence (event registrations), age, phone
// format, emergency contact phone format (event registrations),
// duplicate fields in priority order email > phone > bike registration
// number > licence number. The unique indexes back the precheck up: a
// concurrent submitter who wins the race leaves the loser with the
// same field-level duplicate error.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid form data"))
		return
	}

	eventID := strings.TrimSpace(r.FormValue("eventId"))
	if eventID == "" {
		eventID = models.CommunityEventID
	}
	isCommunity := eventID == models.CommunityEventID

	reg := models.Registration{
		EventID:                eventID,
		FullName:               strings.TrimSpace(r.FormValue("fullName")),
		Email:                  strings.TrimSpace(r.FormValue("email")),
		Phone:                  strings.TrimSpace(r.FormValue("phone")),
		Address:                htmlsanitize.StripTags(r.FormValue("address")),
		EmergencyContactName:   strings.TrimSpace(r.FormValue("emergencyContactName")),
		EmergencyContact:       strings.TrimSpace(r.FormValue("emergencyContactPhone")),
		BikeMake:               strings.TrimSpace(r.FormValue("bikeMake")),
		BikeModel:              strings.TrimSpace(r.FormValue("bikeModel")),
		BikeRegistrationNumber: strings.TrimSpace(r.FormValue("bikeRegistrationNumber")),
		LicenseNumber:          strings.TrimSpace(r.FormValue("licenseNumber")),
		RequestRidingGears:     r.FormValue("requestRidingGears") == "true",
		RequestedGears:         decodeGears(r.FormValue("requestedGears"), h.Log),
	}

	file, header, fileErr := r.FormFile("licenseImage")
	hasImage := fileErr == nil && header != nil && header.Size > 0
	if hasImage {
		defer file.Close()
	}

	// Event registrations must carry a licence image.
	if !isCommunity && !hasImage {
		httpjson.Error(w, h.Log, apperr.Validation("licence image is required"))
		return
	}

	// Age gate, whole years as of today.
	if !isCommunity {
		if dobRaw := strings.TrimSpace(r.FormValue("dateOfBirth")); dobRaw != "" {
			dob, err := parseDate(dobRaw)
			if err != nil {
				httpjson.Error(w, h.Log, apperr.Validation("invalid date of birth"))
				return
			}
			if !inputval.OfAge(dob, time.Now()) {
				httpjson.Error(w, h.Log, apperr.Validation("you must be at least %d years old to register", inputval.MinimumAge))
				return
			}
			reg.DateOfBirth = dob
		}
	}

	if !inputval.PhoneDigits(reg.Phone) {
		httpjson.Error(w, h.Log, apperr.Validation("phone number must be exactly 10 digits"))
		return
	}
	if !isCommunity && !inputval.PhoneDigits(reg.EmergencyContact) {
		httpjson.Error(w, h.Log, apperr.Validation("emergency contact phone must be exactly 10 digits"))
		return
	}

	if reg.FullName == "" {
		httpjson.Error(w, h.Log, apperr.Validation("full name is required"))
		return
	}
	if reg.Email == "" {
		httpjson.Error(w, h.Log, apperr.Validation("email is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	field, err := h.Regs.FindDuplicateField(ctx, reg)
	if err != nil {
		h.Log.Error("registration: duplicate precheck failed", zap.Error(err))
		httpjson.Error(w, h.Log, err)
		return
	}
	if field != "" {
		httpjson.Error(w, h.Log, apperr.Duplicate(field))
		return
	}

	if hasImage {
		obj, err := h.Media.Upload(ctx, "licenses", header.Filename,
			header.Header.Get("Content-Type"), file, header.Size)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.Upstream("licence image upload failed", err))
			return
		}
		reg.LicenseImage = &models.ImageRef{Key: obj.Key, URL: obj.URL}
	}

	created, err := h.Regs.Insert(ctx, reg)
	if err != nil {
		// The image is orphaned if the insert lost a race; reclaim it.
		if reg.LicenseImage != nil {
			if delErr := h.Media.Delete(ctx, reg.LicenseImage.Key); delErr != nil {
				h.Log.Warn("registration: orphaned licence image not deleted",
					zap.String("key", reg.LicenseImage.Key), zap.Error(delErr))
			}
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Notifier.Publish(ctx, notify.RegistrationCreated, map[string]any{
		"registration_id": created.ID.Hex(),
		"event_id":        created.EventID,
		"email":           created.Email,
	})

	h.Log.Info("registration created",
		zap.String("id", created.ID.Hex()),
		zap.String("event_id", created.EventID))
	httpjson.OK(w, http.StatusCreated, "registration successful", created)
}

// HandleList handles GET /registrations?eventId= (admin).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	eventID := strings.TrimSpace(r.URL.Query().Get("eventId"))
	if eventID == "" {
		httpjson.Error(w, h.Log, apperr.Validation("eventId is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	regs, err := h.Regs.ListByEvent(ctx, eventID)
	if err != nil {
		h.Log.Error("registration: list failed", zap.Error(err))
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, "registrations", regs)
}

// HandleDelete handles DELETE /registrations/{id} (admin). The licence
// image is removed from the media host afterwards; a failure there is
// logged but never undoes the deletion.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid registration id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	reg, err := h.Regs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFound("registration"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	if _, err := h.Regs.Delete(ctx, id); err != nil {
		h.Log.Error("registration: delete failed", zap.String("id", id.Hex()), zap.Error(err))
		httpjson.Error(w, h.Log, err)
		return
	}

	if reg.LicenseImage != nil {
		if err := h.Media.Delete(ctx, reg.LicenseImage.Key); err != nil {
			h.Log.Warn("registration: licence image delete failed",
				zap.String("key", reg.LicenseImage.Key), zap.Error(err))
		}
	}

	httpjson.OK(w, http.StatusOK, "registration deleted", nil)
}

// decodeGears decodes the gear selection, which arrives as a
// JSON-encoded string field. Absent or malformed input means no gear
// was requested; that is a logged non-event, not an error.
func decodeGears(raw string, log *zap.Logger) models.RidingGears {
	if strings.TrimSpace(raw) == "" {
		return models.RidingGears{}
	}
	var gears models.RidingGears
	if err := json.Unmarshal([]byte(raw), &gears); err != nil {
		log.Warn("registration: malformed gear selection ignored", zap.Error(err))
		return models.RidingGears{}
	}
	return gears
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format")
}
