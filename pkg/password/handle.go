package password

import (
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-user/pkg/common"
)

type Handle struct {
	passwordService *PasswordService
}

func NewHandle(passwordService *PasswordService) Handle {
	return Handle{passwordService: passwordService}
}

// Routes mounts the public password endpoints.
func (h Handle) Routes(r chi.Router) {
	r.Post("/password/forgot", h.Forgot)
	r.Post("/password/reset", h.Reset)
}

type ForgotRequest struct {
	Email string `json:"email"`
}

type ResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Forgot issues a password reset token
// (POST /password/forgot)
func (h Handle) Forgot(w http.ResponseWriter, r *http.Request) {
	var req ForgotRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		common.RespondError(w, r, http.StatusBadRequest, err)
		return
	}

	if req.Email == "" {
		common.RespondValidation(w, r, map[string][]string{
			"email": {"email is required"},
		})
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		common.RespondValidation(w, r, map[string][]string{
			"email": {"email must be a valid email address"},
		})
		return
	}

	reset, err := h.passwordService.Forgot(r.Context(), req.Email)
	if err != nil {
		slog.Error("Failed issuing password reset", "err", err, "email", req.Email)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	common.Respond(w, r, http.StatusOK, common.Fields{"token": reset.Token})
}

// Reset consumes a password reset token
// (POST /password/reset)
func (h Handle) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		common.RespondError(w, r, http.StatusBadRequest, err)
		return
	}

	errs := make(map[string][]string)
	if req.Token == "" {
		errs["token"] = append(errs["token"], "token is required")
	}
	if req.Password == "" {
		errs["password"] = append(errs["password"], "password is required")
	}
	if len(errs) > 0 {
		common.RespondValidation(w, r, errs)
		return
	}

	if _, err := h.passwordService.Reset(r.Context(), req.Token, req.Password); err != nil {
		slog.Error("Failed resetting password", "err", err)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	common.Respond(w, r, http.StatusOK, common.Fields{"reset": true})
}
