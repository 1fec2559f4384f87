package user

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-user/pkg/client"
	"github.com/tendant/simple-user/pkg/common"
)

type Handle struct {
	userService  *UserService
	avatarStore  AvatarStore
	assetBaseURL string
	basePath     string
}

type HandleOption func(*Handle)

// WithAvatarStore enables avatar uploads, rendering stored paths against
// the given asset base URL.
func WithAvatarStore(store AvatarStore, assetBaseURL string) HandleOption {
	return func(h *Handle) {
		h.avatarStore = store
		h.assetBaseURL = assetBaseURL
	}
}

// WithBasePath sets the mounted path used when building pagination URLs.
func WithBasePath(basePath string) HandleOption {
	return func(h *Handle) {
		h.basePath = basePath
	}
}

func NewHandle(userService *UserService, opts ...HandleOption) Handle {
	h := Handle{
		userService: userService,
		basePath:    "/users",
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type ActivateRequest struct {
	Token string `json:"token"`
}

type UpdateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type UserResponse struct {
	ID              uuid.UUID  `json:"id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	Status          string     `json:"status"`
	Avatar          *string    `json:"avatar"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	LastModifiedAt  time.Time  `json:"last_modified_at"`
}

func (h Handle) toResponse(u User) UserResponse {
	resp := UserResponse{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Status:         u.Status,
		Avatar:         AvatarURL(h.assetBaseURL, u.Avatar),
		CreatedAt:      u.CreatedAt,
		LastModifiedAt: u.LastModifiedAt,
	}
	if u.EmailVerifiedAt.Valid {
		t := u.EmailVerifiedAt.Time
		resp.EmailVerifiedAt = &t
	}
	return resp
}

func (h Handle) toResponses(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, h.toResponse(u))
	}
	return responses
}

// RegisterRoutes mounts the public registration and activation endpoints.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/activate", h.Activate)
}

// ProfileRoutes mounts the authenticated current-user endpoint.
func (h Handle) ProfileRoutes(r chi.Router) {
	r.Get("/profile", h.GetProfile)
}

// UserRoutes mounts the authenticated user CRUD endpoints.
func (h Handle) UserRoutes(r chi.Router) {
	r.Get("/users", h.GetUsers)
	r.Post("/users", h.PostUsers)
	r.Get("/users/{id}", h.GetUser)
	r.Put("/users/{id}", h.PutUser)
	r.Delete("/users/{id}", h.DeleteUser)
}

func validateCreate(req RegisterRequest) map[string][]string {
	errs := make(map[string][]string)
	if req.FirstName == "" {
		errs["first_name"] = append(errs["first_name"], "first_name is required")
	}
	if req.LastName == "" {
		errs["last_name"] = append(errs["last_name"], "last_name is required")
	}
	if req.Email == "" {
		errs["email"] = append(errs["email"], "email is required")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs["email"] = append(errs["email"], "email must be a valid email address")
	}
	if req.Password == "" {
		errs["password"] = append(errs["password"], "password is required")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (h Handle) createUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		common.RespondError(w, r, http.StatusBadRequest, err)
		return
	}

	if errs := validateCreate(req); errs != nil {
		common.RespondValidation(w, r, errs)
		return
	}

	var params CreateUserParams
	if err := copier.Copy(&params, &req); err != nil {
		slog.Error("Failed mapping request", "err", err)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	created, err := h.userService.Create(r.Context(), params)
	if err != nil {
		slog.Error("Failed creating user", "err", err, "email", req.Email)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	common.RespondData(w, r, h.toResponse(created))
}

// Register creates a pending user
// (POST /register)
func (h Handle) Register(w http.ResponseWriter, r *http.Request) {
	h.createUser(w, r)
}

// PostUsers creates a user through the authenticated surface
// (POST /users)
func (h Handle) PostUsers(w http.ResponseWriter, r *http.Request) {
	h.createUser(w, r)
}

// Activate consumes an activation token
// (POST /activate)
func (h Handle) Activate(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		common.RespondError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Token == "" {
		common.RespondValidation(w, r, map[string][]string{
			"token": {"token is required"},
		})
		return
	}

	activated, err := h.userService.ActivateByToken(r.Context(), req.Token)
	if err != nil {
		slog.Error("Failed activating user", "err", err)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	common.RespondData(w, r, h.toResponse(activated))
}

// GetProfile returns the logged-in user
// (GET /profile)
func (h Handle) GetProfile(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.userService.FindByID(r.Context(), authUser.UserUuid)
	if err != nil {
		slog.Error("Failed getting profile", "err", err, "userId", authUser.UserId)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	common.RespondData(w, r, h.toResponse(u))
}

// GetUsers searches users with pagination
// (GET /users)
func (h Handle) GetUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keyword := q.Get("keyword")
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = h.userService.ResultsPerPage()
	}

	users, total, err := h.userService.Search(r.Context(), keyword, page, limit)
	if err != nil {
		slog.Error("Failed searching users", "err", err)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	params := url.Values{}
	if keyword != "" {
		params.Set("keyword", keyword)
	}
	if q.Get("limit") != "" {
		params.Set("limit", q.Get("limit"))
	}
	pagination := common.NewPagination(h.basePath, total, page, limit, params)

	fields := pagination.Fields()
	fields["data"] = h.toResponses(users)
	common.Respond(w, r, http.StatusOK, fields)
}

// GetUser reads a single user
// (GET /users/{id})
func (h Handle) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.RespondError(w, r, http.StatusBadRequest, err)
		return
	}

	u, err := h.userService.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("Failed getting user", "err", err, "id", id)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	common.RespondData(w, r, h.toResponse(u))
}

// PutUser updates a user. Accepts JSON or multipart form data with an
// optional avatar file.
// (PUT /users/{id})
func (h Handle) PutUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.RespondError(w, r, http.StatusBadRequest, err)
		return
	}

	var req UpdateUserRequest
	var avatarPath string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxAvatarBytes + 1<<20); err != nil {
			common.RespondError(w, r, http.StatusBadRequest, err)
			return
		}
		req.FirstName = r.FormValue("first_name")
		req.LastName = r.FormValue("last_name")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")

		avatarPath, err = h.storeAvatar(r)
		if err != nil {
			common.RespondValidation(w, r, map[string][]string{
				"avatar": {err.Error()},
			})
			return
		}
	} else {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			common.RespondError(w, r, http.StatusBadRequest, err)
			return
		}
	}

	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			common.RespondValidation(w, r, map[string][]string{
				"email": {"email must be a valid email address"},
			})
			return
		}
	}

	var params UpdateUserParams
	if err := copier.Copy(&params, &req); err != nil {
		slog.Error("Failed mapping request", "err", err)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}
	params.ID = id
	params.AvatarPath = avatarPath

	updated, err := h.userService.Update(r.Context(), params)
	if err != nil {
		slog.Error("Failed updating user", "err", err, "id", id)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	common.RespondData(w, r, h.toResponse(updated))
}

// storeAvatar validates and stores an uploaded avatar, returning its
// stored path. Returns "" when no avatar field is present.
func (h Handle) storeAvatar(r *http.Request) (string, error) {
	file, header, err := r.FormFile("avatar")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	if h.avatarStore == nil {
		return "", ErrInvalidAvatar
	}
	if header.Size > MaxAvatarBytes {
		return "", ErrInvalidAvatar
	}

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	contentType := http.DetectContentType(head[:n])

	return h.avatarStore.Store(contentType, io.MultiReader(bytes.NewReader(head[:n]), file))
}

// DeleteUser removes a user
// (DELETE /users/{id})
func (h Handle) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.RespondError(w, r, http.StatusBadRequest, err)
		return
	}

	deleted, err := h.userService.Delete(r.Context(), id)
	if err != nil {
		slog.Error("Failed deleting user", "err", err, "id", id)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	common.Respond(w, r, http.StatusOK, common.Fields{"deleted": deleted})
}
