package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/portal/internal/fnstub/service"
	"github.com/aussiebroadwan/portal/pkg/funcsdk"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

// Format selects how generation endpoints encode their answer.
type Format string

const (
	// FormatJSON answers {"success":true,"qrcode":<base64 PNG>,"password"|"secret":...}.
	FormatJSON Format = "json"

	// FormatRaw answers with the bare base64 PNG as text.
	FormatRaw Format = "raw"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatRaw:
		return f, nil
	}
	return "", fmt.Errorf("unknown response format %q", s)
}

// Plain-text answers of the authuser function.
const (
	TextMissingCredentials    = "Missing credentials"
	TextAuthenticationError   = "Authentication error"
	TextCredentialsExpired    = "Credentials expired"
	TextAuthenticationSuccess = "Authentication success"
)

const maxRequestBytes = 16 << 10

// CredentialService is the subset of *service.CredentialService the handlers
// need.
type CredentialService interface {
	GeneratePassword(ctx context.Context, username string) (service.Provisioned, error)
	Generate2FA(ctx context.Context, username string) (service.Provisioned, error)
	Authenticate(ctx context.Context, username, password, code string) error
}

type CredentialHandler struct {
	Service CredentialService
	Format  Format
}

// HandleGeneratePassword handles POST /function/gen-password
func (h *CredentialHandler) HandleGeneratePassword(w http.ResponseWriter, r *http.Request) {
	h.handleProvision(w, r, "password", h.Service.GeneratePassword)
}

// HandleGenerate2FA handles POST /function/generate2fa
func (h *CredentialHandler) HandleGenerate2FA(w http.ResponseWriter, r *http.Request) {
	h.handleProvision(w, r, "secret", h.Service.Generate2FA)
}

func (h *CredentialHandler) handleProvision(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	generate func(context.Context, string) (service.Provisioned, error),
) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	creds, err := decodeCredentials(w, r)
	if err != nil {
		log.Warn("failed to parse request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	res, err := generate(ctx, creds.Username)
	if errors.Is(err, service.ErrMissingUsername) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "username is required")
		return
	}
	if err != nil {
		log.Error("failed to generate "+field, "username", creds.Username, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	log.Info(field+" generated", "username", creds.Username)

	qr := base64.StdEncoding.EncodeToString(res.QRCode)
	if h.Format == FormatRaw {
		httpx.WriteText(w, http.StatusOK, qr)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"qrcode":  qr,
		field:     res.Value,
	})
}

// HandleAuthenticate handles POST /function/authuser. Every verdict is a 200
// with a plain-text body.
func (h *CredentialHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	creds, err := decodeCredentials(w, r)
	if err != nil {
		log.Warn("failed to parse request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	err = h.Service.Authenticate(ctx, creds.Username, creds.Password, creds.OTP)
	switch {
	case err == nil:
		log.Info("authentication succeeded", "username", creds.Username)
		httpx.WriteText(w, http.StatusOK, TextAuthenticationSuccess)
	case errors.Is(err, service.ErrMissingCredentials):
		httpx.WriteText(w, http.StatusOK, TextMissingCredentials)
	case errors.Is(err, service.ErrAuthentication):
		log.Warn("authentication failed", "username", creds.Username)
		httpx.WriteText(w, http.StatusOK, TextAuthenticationError)
	case errors.Is(err, service.ErrCredentialsExpired):
		log.Info("credentials expired", "username", creds.Username)
		httpx.WriteText(w, http.StatusOK, TextCredentialsExpired)
	default:
		log.Error("authentication check failed", "username", creds.Username, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

// decodeCredentials accepts the same JSON the portal client sends, or form
// values.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (funcsdk.Credentials, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var creds funcsdk.Credentials
	if httpx.IsJSON(r) {
		err := json.NewDecoder(r.Body).Decode(&creds)
		return creds, err
	}

	if err := r.ParseForm(); err != nil {
		return creds, err
	}
	creds.Username = r.PostFormValue("username")
	creds.Password = r.PostFormValue("password")
	creds.OTP = r.PostFormValue("otp")
	return creds, nil
}
