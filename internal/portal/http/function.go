package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/portal/pkg/funcsdk"
	"github.com/aussiebroadwan/portal/pkg/httpx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
)

// maxRequestBytes bounds page submissions.
const maxRequestBytes = 16 << 10

// FunctionHandler forwards page submissions to the function backend and
// answers with the normalized result.
type FunctionHandler struct {
	Client FunctionClient
}

// HandleGeneratePassword handles POST /function/gen-password
func (h *FunctionHandler) HandleGeneratePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	creds, err := decodeCredentials(w, r)
	if err != nil {
		log.Warn("failed to parse request", "err", err)
		writeInvalidRequest(w)
		return
	}

	res, err := h.Client.GeneratePassword(ctx, creds.Username)
	if err != nil {
		writeClientError(w, r, err)
		return
	}

	log.Info("password generated", "username", creds.Username, "success", res.Success)
	httpx.WriteJSON(w, http.StatusOK, res)
}

// HandleGenerate2FA handles POST /function/generate2fa
func (h *FunctionHandler) HandleGenerate2FA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	creds, err := decodeCredentials(w, r)
	if err != nil {
		log.Warn("failed to parse request", "err", err)
		writeInvalidRequest(w)
		return
	}

	res, err := h.Client.Generate2FA(ctx, creds.Username)
	if err != nil {
		writeClientError(w, r, err)
		return
	}

	log.Info("2FA secret generated", "username", creds.Username, "success", res.Success)
	httpx.WriteJSON(w, http.StatusOK, res)
}

// HandleAuthenticate handles POST /function/authuser. A rejected login is
// still a 200; the verdict is in the body.
func (h *FunctionHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	creds, err := decodeCredentials(w, r)
	if err != nil {
		log.Warn("failed to parse request", "err", err)
		writeInvalidRequest(w)
		return
	}

	res, err := h.Client.AuthenticateUser(ctx, creds)
	if err != nil {
		writeClientError(w, r, err)
		return
	}

	log.Info("authentication attempt",
		"username", creds.Username,
		"success", res.Success,
		"expired", res.Expired,
	)
	httpx.WriteJSON(w, http.StatusOK, res)
}

// decodeCredentials reads a JSON body, or form values for any other content
// type. Fields the endpoint does not use are simply left empty.
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

func writeInvalidRequest(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
}

// writeClientError maps a funcsdk failure onto the portal response.
func writeClientError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var reqErr *funcsdk.RequestError
	var netErr *funcsdk.NetworkError

	switch {
	case errors.As(err, &reqErr):
		log.Warn("function rejected request", "endpoint", reqErr.Endpoint, "status", reqErr.StatusCode)
		reqErr.WriteError(w)
	case errors.As(err, &netErr):
		log.Error("function unreachable", "endpoint", netErr.Endpoint, "err", netErr.Err)
		netErr.WriteError(w)
	default:
		log.Error("function call failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}
