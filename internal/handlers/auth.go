// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions *session.Store
	accounts *store.AccountStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, accounts *store.AccountStore) *Auth {
	return &Auth{
		sessions: sessions,
		accounts: accounts,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Register creates a reader account and opens a session.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email address", "email")
		return
	}
	if utf8.RuneCountInString(req.Password) < minPassword {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters", "password")
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" || utf8.RuneCountInString(req.DisplayName) > maxNameLen {
		writeError(w, http.StatusBadRequest, "display name is required (max 100 characters)", "display_name")
		return
	}

	existing, err := a.accounts.FindByEmail(req.Email)
	if err != nil {
		writeServerError(w, "register lookup failed", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered", "email")
		return
	}

	account, err := a.accounts.Create(req.Email, req.Password, req.DisplayName, models.RoleReader)
	if err != nil {
		writeServerError(w, "register create failed", err)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		AccountID:   account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Role:        string(account.Role),
		TwoFADone:   true, // readers have no 2FA requirement
	}); err != nil {
		writeServerError(w, "session create failed", err)
		return
	}

	writeData(w, http.StatusCreated, account)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Account       *models.Account `json:"account"`
	TwoFARequired bool            `json:"two_fa_required"`
	TwoFAEnrolled bool            `json:"two_fa_enrolled"`
}

// Login validates credentials and opens a session. Admin accounts must
// still pass 2FA verification before admin routes accept them.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := a.accounts.FindByEmail(req.Email)
	if err != nil {
		writeServerError(w, "login lookup failed", err)
		return
	}

	// Same message for unknown email and wrong password.
	if account == nil || !a.accounts.CheckPassword(account, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if account.Suspended {
		writeError(w, http.StatusForbidden, "account suspended")
		return
	}

	twoFARequired := account.IsAdmin()
	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		AccountID:   account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Role:        string(account.Role),
		TwoFADone:   !twoFARequired,
	}); err != nil {
		writeServerError(w, "session create failed", err)
		return
	}

	writeData(w, http.StatusOK, loginResponse{
		Account:       account,
		TwoFARequired: twoFARequired,
		TwoFAEnrolled: account.TOTPEnabled,
	})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	writeData(w, http.StatusOK, map[string]bool{"logged_out": true})
}

// Me returns the authenticated account.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	account, err := a.accounts.FindByID(sess.AccountID)
	if err != nil {
		writeServerError(w, "me lookup failed", err)
		return
	}
	if account == nil {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	writeData(w, http.StatusOK, account)
}

type twoFASetupResponse struct {
	Secret string `json:"secret"`
	QRPNG  string `json:"qr_png"` // base64-encoded PNG
}

// TwoFASetup generates a TOTP secret for the authenticated admin and
// returns it with an enrollment QR code.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Inkwell",
		AccountName: sess.Email,
	})
	if err != nil {
		writeServerError(w, "totp generate failed", err)
		return
	}

	if err := a.accounts.SetTOTPSecret(sess.AccountID, key.Secret()); err != nil {
		writeServerError(w, "save totp secret failed", err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		writeServerError(w, "qr code generation failed", err)
		return
	}

	writeData(w, http.StatusOK, twoFASetupResponse{
		Secret: key.Secret(),
		QRPNG:  base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type twoFAVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify validates the TOTP code and completes authentication for
// this session. The first successful verification enables TOTP on the
// account.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req twoFAVerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := a.accounts.FindByID(sess.AccountID)
	if err != nil || account == nil {
		writeServerError(w, "account lookup for 2fa failed", err)
		return
	}

	if account.TOTPSecret == nil {
		writeError(w, http.StatusBadRequest, "two-factor setup has not been started")
		return
	}

	if !totp.Validate(req.Code, *account.TOTPSecret) {
		writeError(w, http.StatusBadRequest, "invalid code", "code")
		return
	}

	// First-time setup: enable TOTP on the account.
	if !account.TOTPEnabled {
		if err := a.accounts.EnableTOTP(account.ID); err != nil {
			writeServerError(w, "enable totp failed", err)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		writeServerError(w, "session update failed", err)
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"verified": true})
}
