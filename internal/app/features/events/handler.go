package events

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	eventstore "github.com/ridehubhq/ridehub/internal/app/store/events"
	registrationstore "github.com/ridehubhq/ridehub/internal/app/store/registrations"
	"github.com/ridehubhq/ridehub/internal/app/system/apperr"
	"github.com/ridehubhq/ridehub/internal/app/system/htmlsanitize"
	"github.com/ridehubhq/ridehub/internal/app/system/httpjson"
	"github.com/ridehubhq/ridehub/internal/app/system/media"
	"github.com/ridehubhq/ridehub/internal/app/system/timeouts"
	"github.com/ridehubhq/ridehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the public event listing and the admin event CRUD.
type Handler struct {
	Events *eventstore.Store
	Regs   *registrationstore.Store
	Media  media.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, mediaStore media.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Events: eventstore.New(db),
		Regs:   registrationstore.New(db),
		Media:  mediaStore,
		Log:    logger,
	}
}

// HandleListActive handles GET /events.
func (h *Handler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Events.ListActive(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, "events", list)
}

// HandleListAll handles GET /events/all (admin).
func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Events.ListAll(ctx)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, "events", list)
}

// HandleCreate handles POST /events (admin, multipart).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid form data"))
		return
	}

	e := models.Event{
		Title:              strings.TrimSpace(r.FormValue("title")),
		Description:        htmlsanitize.StripTags(r.FormValue("description")),
		Location:           strings.TrimSpace(r.FormValue("location")),
		IsActive:           r.FormValue("isActive") != "false",
		CertificateEnabled: r.FormValue("certificateEnabled") == "true",
	}
	if e.Title == "" {
		httpjson.Error(w, h.Log, apperr.Validation("title is required"))
		return
	}
	if raw := strings.TrimSpace(r.FormValue("startsAt")); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.Validation("invalid startsAt date"))
			return
		}
		e.StartsAt = t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	banner, err := h.uploadBanner(ctx, r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	e.Banner = banner

	created, err := h.Events.Create(ctx, e)
	if err != nil {
		if banner != nil {
			h.deleteBanner(ctx, banner)
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("event created", zap.String("id", created.ID.Hex()), zap.String("title", created.Title))
	httpjson.OK(w, http.StatusCreated, "event created", created)
}

// HandleUpdate handles PUT /events/{id} (admin, multipart). Fields
// present in the form overwrite; a new banner replaces the old object.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid event id"))
		return
	}
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid form data"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	current, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFound("event"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	set := bson.M{}
	field := func(name string) (string, bool) {
		vals, present := r.MultipartForm.Value[name]
		if !present || len(vals) == 0 {
			return "", false
		}
		return vals[0], true
	}

	if title, ok := field("title"); ok {
		title = strings.TrimSpace(title)
		if title == "" {
			httpjson.Error(w, h.Log, apperr.Validation("title cannot be empty"))
			return
		}
		set["title"] = title
	}
	if desc, ok := field("description"); ok {
		set["description"] = htmlsanitize.StripTags(desc)
	}
	if loc, ok := field("location"); ok {
		set["location"] = strings.TrimSpace(loc)
	}
	if raw, ok := field("startsAt"); ok {
		t, err := parseDate(strings.TrimSpace(raw))
		if err != nil {
			httpjson.Error(w, h.Log, apperr.Validation("invalid startsAt date"))
			return
		}
		set["starts_at"] = t
	}
	if v, ok := field("isActive"); ok {
		set["is_active"] = v == "true"
	}
	if v, ok := field("certificateEnabled"); ok {
		set["certificate_enabled"] = v == "true"
	}

	if banner, err := h.uploadBanner(ctx, r); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	} else if banner != nil {
		set["banner"] = banner
		h.deleteBanner(ctx, current.Banner)
	}

	updated, err := h.Events.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFound("event"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("event updated", zap.String("id", id.Hex()))
	httpjson.OK(w, http.StatusOK, "event updated", updated)
}

// HandleDelete handles DELETE /events/{id} (admin). The event's
// registrations and banner go with it; the banner delete is
// best-effort.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid event id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFound("event"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	removed, err := h.Regs.DeleteByEvent(ctx, id.Hex())
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if _, err := h.Events.Delete(ctx, id); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	h.deleteBanner(ctx, event.Banner)

	h.Log.Info("event deleted",
		zap.String("id", id.Hex()),
		zap.Int64("registrations_removed", removed))
	httpjson.OK(w, http.StatusOK, "event deleted", nil)
}

func (h *Handler) uploadBanner(ctx context.Context, r *http.Request) (*models.ImageRef, error) {
	file, header, err := r.FormFile("banner")
	if err != nil || header == nil || header.Size == 0 {
		return nil, nil
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	obj, err := h.Media.Upload(ctx, "event-banners", header.Filename,
		header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		return nil, apperr.Upstream("banner upload failed", err)
	}
	return &models.ImageRef{Key: obj.Key, URL: obj.URL}, nil
}

func (h *Handler) deleteBanner(ctx context.Context, ref *models.ImageRef) {
	if ref == nil || ref.Key == "" {
		return
	}
	if err := h.Media.Delete(ctx, ref.Key); err != nil {
		h.Log.Warn("event banner not deleted", zap.String("key", ref.Key), zap.Error(err))
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
