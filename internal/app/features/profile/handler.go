package profile

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	userstore "github.com/ridehubhq/ridehub/internal/app/store/users"
	"github.com/ridehubhq/ridehub/internal/app/system/apperr"
	"github.com/ridehubhq/ridehub/internal/app/system/auth"
	"github.com/ridehubhq/ridehub/internal/app/system/authutil"
	"github.com/ridehubhq/ridehub/internal/app/system/htmlsanitize"
	"github.com/ridehubhq/ridehub/internal/app/system/httpjson"
	"github.com/ridehubhq/ridehub/internal/app/system/inputval"
	"github.com/ridehubhq/ridehub/internal/app/system/media"
	"github.com/ridehubhq/ridehub/internal/app/system/normalize"
	"github.com/ridehubhq/ridehub/internal/app/system/timeouts"
	"github.com/ridehubhq/ridehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves member profile creation and updates.
type Handler struct {
	Users *userstore.Store
	Media media.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, mediaStore media.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Users: userstore.New(db),
		Media: mediaStore,
		Log:   logger,
	}
}

// HandleCreate handles POST /profile (multipart). Every profile field
// is required at creation; the two images are optional.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid form data"))
		return
	}

	u := models.User{
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
		Role:                   "member",
	}
	password := r.FormValue("password")

	required := []struct {
		name  string
		value string
	}{
		{"full name", u.FullName},
		{"email", u.Email},
		{"phone", u.Phone},
		{"password", password},
		{"address", u.Address},
		{"emergency contact name", u.EmergencyContactName},
		{"emergency contact phone", u.EmergencyContact},
		{"bike make", u.BikeMake},
		{"bike model", u.BikeModel},
		{"bike registration number", u.BikeRegistrationNumber},
		{"license number", u.LicenseNumber},
	}
	for _, f := range required {
		if f.value == "" {
			httpjson.Error(w, h.Log, apperr.Validation("%s is required", f.name))
			return
		}
	}

	if !inputval.PhoneDigits(u.Phone) {
		httpjson.Error(w, h.Log, apperr.Validation("phone number must be exactly 10 digits"))
		return
	}
	if !inputval.PhoneDigits(u.EmergencyContact) {
		httpjson.Error(w, h.Log, apperr.Validation("emergency contact phone must be exactly 10 digits"))
		return
	}
	if err := authutil.ValidatePassword(password); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("%s", err.Error()))
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.Log.Error("profile: password hash failed", zap.Error(err))
		httpjson.Error(w, h.Log, err)
		return
	}
	u.PasswordHash = hash

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var uploaded []string
	if ref, err := h.uploadImage(ctx, r, "profileImage", "profiles"); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	} else if ref != nil {
		u.ProfileImage = ref
		uploaded = append(uploaded, ref.Key)
	}
	if ref, err := h.uploadImage(ctx, r, "licenseImage", "licenses"); err != nil {
		h.cleanupUploads(ctx, uploaded)
		httpjson.Error(w, h.Log, err)
		return
	} else if ref != nil {
		u.LicenseImage = ref
		uploaded = append(uploaded, ref.Key)
	}

	created, err := h.Users.Create(ctx, u)
	if err != nil {
		h.cleanupUploads(ctx, uploaded)
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("profile created", zap.String("id", created.ID.Hex()))
	httpjson.OK(w, http.StatusCreated, "profile created", created)
}

// HandleUpdate handles PUT /profile (multipart, member token). Fields
// present in the form overwrite; absent fields keep their value.
// Replacing an image deletes the previous media object, best-effort.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	tu, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, h.Log, apperr.Auth("sign-in required"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(tu.ID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Auth("invalid token subject"))
		return
	}

	if err := r.ParseMultipartForm(16 << 20); err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("invalid form data"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	current, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, h.Log, apperr.NotFound("profile"))
			return
		}
		httpjson.Error(w, h.Log, err)
		return
	}

	set := bson.M{}
	setField := func(form, bsonKey string, clean func(string) string) (string, bool) {
		vals, present := r.MultipartForm.Value[form]
		if !present || len(vals) == 0 {
			return "", false
		}
		v := clean(vals[0])
		set[bsonKey] = v
		return v, true
	}
	trim := strings.TrimSpace

	if name, ok := setField("fullName", "full_name", normalize.Name); ok {
		if name == "" {
			httpjson.Error(w, h.Log, apperr.Validation("full name cannot be empty"))
			return
		}
		set["full_name_ci"] = text.Fold(name)
	}
	if email, ok := setField("email", "email", normalize.Email); ok && email == "" {
		httpjson.Error(w, h.Log, apperr.Validation("email cannot be empty"))
		return
	}
	if phone, ok := setField("phone", "phone", normalize.Phone); ok && !inputval.PhoneDigits(phone) {
		httpjson.Error(w, h.Log, apperr.Validation("phone number must be exactly 10 digits"))
		return
	}
	setField("address", "address", htmlsanitize.StripTags)
	setField("emergencyContactName", "emergency_contact_name", trim)
	if ec, ok := setField("emergencyContactPhone", "emergency_contact_phone", normalize.Phone); ok && !inputval.PhoneDigits(ec) {
		httpjson.Error(w, h.Log, apperr.Validation("emergency contact phone must be exactly 10 digits"))
		return
	}
	setField("bikeMake", "bike_make", trim)
	setField("bikeModel", "bike_model", trim)
	setField("bikeRegistrationNumber", "bike_registration_number", trim)
	setField("licenseNumber", "license_number", trim)

	if password := r.FormValue("password"); password != "" {
		if err := authutil.ValidatePassword(password); err != nil {
			httpjson.Error(w, h.Log, apperr.Validation("%s", err.Error()))
			return
		}
		hash, err := authutil.HashPassword(password)
		if err != nil {
			h.Log.Error("profile: password hash failed", zap.Error(err))
			httpjson.Error(w, h.Log, err)
			return
		}
		set["password_hash"] = hash
	}

	// Image replacement: upload the new object, then drop the old one.
	if ref, err := h.uploadImage(ctx, r, "profileImage", "profiles"); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	} else if ref != nil {
		set["profile_image"] = ref
		h.deleteOld(ctx, current.ProfileImage)
	}
	if ref, err := h.uploadImage(ctx, r, "licenseImage", "licenses"); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	} else if ref != nil {
		set["license_image"] = ref
		h.deleteOld(ctx, current.LicenseImage)
	}

	updated, err := h.Users.UpdateFields(ctx, userID, set)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	h.Log.Info("profile updated", zap.String("id", userID.Hex()))
	httpjson.OK(w, http.StatusOK, "profile updated", updated)
}

// uploadImage forwards one optional file part to the media host.
// A missing part returns (nil, nil); a failed upload is upstream.
func (h *Handler) uploadImage(ctx context.Context, r *http.Request, field, folder string) (*models.ImageRef, error) {
	file, header, err := r.FormFile(field)
	if err != nil || header == nil || header.Size == 0 {
		return nil, nil
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	obj, err := h.Media.Upload(ctx, folder, header.Filename,
		header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		return nil, apperr.Upstream("image upload failed", err)
	}
	return &models.ImageRef{Key: obj.Key, URL: obj.URL}, nil
}

func (h *Handler) deleteOld(ctx context.Context, ref *models.ImageRef) {
	if ref == nil || ref.Key == "" {
		return
	}
	if err := h.Media.Delete(ctx, ref.Key); err != nil {
		h.Log.Warn("profile: previous image not deleted",
			zap.String("key", ref.Key), zap.Error(err))
	}
}

func (h *Handler) cleanupUploads(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := h.Media.Delete(ctx, key); err != nil {
			h.Log.Warn("profile: orphaned image not deleted",
				zap.String("key", key), zap.Error(err))
		}
	}
}
