package login

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-user/pkg/client"
	"github.com/tendant/simple-user/pkg/common"
	"github.com/tendant/simple-user/pkg/tokengenerator"
)

const grantTypePassword = "password"

type Handle struct {
	loginService *LoginService
	tokenService *tokengenerator.TokenService
}

func NewHandle(loginService *LoginService, tokenService *tokengenerator.TokenService) Handle {
	return Handle{
		loginService: loginService,
		tokenService: tokenService,
	}
}

// TokenRoutes mounts the public token issuance endpoint.
func (h Handle) TokenRoutes(r chi.Router) {
	r.Post("/oauth/token", h.PostToken)
}

// RevokeRoutes mounts the authenticated token revocation endpoint.
func (h Handle) RevokeRoutes(r chi.Router) {
	r.Delete("/oauth/token", h.DeleteToken)
}

type TokenRequest struct {
	GrantType string `json:"grant_type"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// decodeTokenRequest accepts the OAuth form encoding as well as JSON.
func decodeTokenRequest(r *http.Request) (TokenRequest, error) {
	var req TokenRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return TokenRequest{}, err
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return TokenRequest{}, err
	}
	req.GrantType = r.PostFormValue("grant_type")
	req.Username = r.PostFormValue("username")
	req.Password = r.PostFormValue("password")
	return req, nil
}

func respondInvalidGrant(w http.ResponseWriter, r *http.Request, err error) {
	common.Respond(w, r, http.StatusUnauthorized, common.Fields{
		"error":   "invalid_grant",
		"message": err.Error(),
	})
}

// PostToken exchanges email and password for an access token
// (POST /oauth/token)
func (h Handle) PostToken(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTokenRequest(r)
	if err != nil {
		common.RespondError(w, r, http.StatusBadRequest, err)
		return
	}

	if req.GrantType != grantTypePassword {
		respondInvalidGrant(w, r, ErrInvalidCredentials)
		return
	}

	authUser, err := h.loginService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		slog.Debug("Login rejected", "username", req.Username, "err", err)
		respondInvalidGrant(w, r, err)
		return
	}

	tv, err := h.tokenService.GenerateAccessToken(authUser.UserID.String(), map[string]interface{}{
		"email": authUser.Email,
		"roles": authUser.Roles,
	})
	if err != nil {
		slog.Error("Failed issuing access token", "err", err, "userId", authUser.UserID)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	if err := h.loginService.RecordToken(r.Context(), tv.Jti, authUser.UserID, tv.ExpiresAt); err != nil {
		slog.Error("Failed recording access token", "err", err, "jti", tv.Jti)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	common.Respond(w, r, http.StatusOK, common.Fields{
		"access_token": tv.Token,
		"token_type":   "Bearer",
		"expires_in":   h.tokenService.AccessTokenExpiry(),
	})
}

// DeleteToken revokes the presented token
// (DELETE /oauth/token)
func (h Handle) DeleteToken(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.loginService.RevokeToken(r.Context(), authUser.Jti); err != nil {
		slog.Error("Failed revoking access token", "err", err, "jti", authUser.Jti)
		common.RespondError(w, r, http.StatusInternalServerError, err)
		return
	}

	common.Respond(w, r, http.StatusOK, common.Fields{"authenticated": false})
}
