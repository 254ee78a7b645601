package user

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/araufdev/business-management/internal/transport"
	"github.com/araufdev/business-management/pkg/logger"
	"github.com/go-chi/chi"
)

const maxProfilePictureSize = 5 << 20 // 5MB

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateUserDTO) (*User, error)
	Update(ctx context.Context, id int64, dto UpdateUserDTO) error
	Delete(id int64) error
	List() ([]*UserWithRole, error)
	GetByID(id int64) (*User, error)
}

// ImageStore uploads a profile picture and returns the opaque URL stored
// against the user.
type ImageStore interface {
	UploadProfilePicture(ctx context.Context, filename, contentType string, content io.Reader) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Images  ImageStore
}

func NewHandler(service ServiceAPI, images ImageStore) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Images:      images,
	}
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid user ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return 0, false
	}
	return id, true
}

// uploadProfilePicture streams the optional profilePicture part to the image
// store and returns the stored URL, or nil when no file was sent.
func (h *Handler) uploadProfilePicture(w http.ResponseWriter, r *http.Request) (*string, bool) {
	file, header, err := r.FormFile("profilePicture")
	if err == http.ErrMissingFile {
		return nil, true
	}
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid profile picture upload")
		return nil, false
	}
	defer file.Close()

	if header.Size > maxProfilePictureSize {
		h.WriteError(w, http.StatusBadRequest, "profile picture exceeds the 5MB limit")
		return nil, false
	}

	url, err := h.Images.UploadProfilePicture(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.Logger.Error("profile picture upload failed", "filename", header.Filename, "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to upload profile picture")
		return nil, false
	}
	return &url, true
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, users)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	u, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, u)
}

// CreateUser handles POST /users (multipart form with optional profilePicture)
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProfilePictureSize); err != nil {
		h.Logger.Error("CreateUser: invalid multipart form", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	pictureURL, ok := h.uploadProfilePicture(w, r)
	if !ok {
		return
	}

	dto := CreateUserDTO{
		FirstName:         r.FormValue("firstName"),
		LastName:          r.FormValue("lastName"),
		Email:             r.FormValue("email"),
		Phone:             r.FormValue("phone"),
		Password:          r.FormValue("password"),
		Role:              r.FormValue("role"),
		Company:           r.FormValue("company"),
		ProfilePictureURL: pictureURL,
	}

	u, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteData(w, http.StatusCreated, u)
}

// UpdateUser handles PUT /users/{id} (multipart form, partial patch)
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxProfilePictureSize); err != nil {
		h.Logger.Error("UpdateUser: invalid multipart form", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	pictureURL, ok := h.uploadProfilePicture(w, r)
	if !ok {
		return
	}

	dto := UpdateUserDTO{
		FirstName:         nonEmptyField(r.MultipartForm, "firstName"),
		LastName:          nonEmptyField(r.MultipartForm, "lastName"),
		Email:             nonEmptyField(r.MultipartForm, "email"),
		Phone:             suppliedField(r.MultipartForm, "phone"),
		Password:          nonEmptyField(r.MultipartForm, "password"),
		Role:              nonEmptyField(r.MultipartForm, "role"),
		Company:           suppliedField(r.MultipartForm, "company"),
		ProfilePictureURL: pictureURL,
	}

	if err := h.Service.Update(r.Context(), id, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "User updated successfully")
}

// DeleteUser handles DELETE /users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "User deleted successfully")
}

// nonEmptyField returns the form value only when it is present and non-empty.
func nonEmptyField(form *multipart.Form, key string) *string {
	if form == nil {
		return nil
	}
	values, ok := form.Value[key]
	if !ok || len(values) == 0 || values[0] == "" {
		return nil
	}
	return &values[0]
}

// suppliedField returns the form value whenever the field was sent, even when
// empty, so clients can clear optional attributes.
func suppliedField(form *multipart.Form, key string) *string {
	if form == nil {
		return nil
	}
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
