package funcsdk

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	// PNGBase64Signature is how every base64-encoded PNG starts.
	PNGBase64Signature = "iVBORw0KGgo"

	// PNGDataURIPrefix turns base64 PNG data into an <img src> value.
	PNGDataURIPrefix = "data:image/png;base64,"
)

// Phrases looked for in plain-text authuser answers.
const (
	phraseMissingCredentials = "Missing credentials"
	phraseError              = "error"
	phraseExpired            = "expired"
)

// EmptyResponseMessage is reported when a function answers 2xx with no body.
const EmptyResponseMessage = "Empty response"

// NormalizeQRCode prefixes s with the PNG data URI header unless it already is
// a data URI. Applying it twice is the same as applying it once.
func NormalizeQRCode(s string) string {
	if s == "" || strings.HasPrefix(s, "data:") {
		return s
	}
	return PNGDataURIPrefix + s
}

// classifyProvisioning turns a gen-password or generate2fa body into a result.
func classifyProvisioning(body []byte, p provisioning) *ProvisioningResult {
	if fields, ok := decodeObject(body); ok {
		return provisioningFromJSON(fields, body, p)
	}

	text := bodyText(body)
	if trimmed := strings.TrimSpace(text); strings.HasPrefix(trimmed, PNGBase64Signature) {
		res := &ProvisioningResult{
			Success:      true,
			QRCodeBase64: PNGDataURIPrefix + trimmed,
		}
		p.set(res, p.placeholder)
		return res
	}

	if strings.TrimSpace(text) == "" {
		text = EmptyResponseMessage
	}
	return &ProvisioningResult{Message: text}
}

func provisioningFromJSON(fields map[string]json.RawMessage, body []byte, p provisioning) *ProvisioningResult {
	res := &ProvisioningResult{}
	extra := make(map[string]json.RawMessage)
	hasSuccess := false

	for key, raw := range fields {
		var ok bool
		switch key {
		case "success":
			res.Success, ok = boolValue(raw)
			hasSuccess = ok
		case "qrcode_base64":
			res.QRCodeBase64, ok = stringValue(raw)
		case "qrcode":
			res.QRCode, ok = stringValue(raw)
		case "password":
			res.Password, ok = stringValue(raw)
		case "secret":
			res.Secret, ok = stringValue(raw)
		case "message":
			res.Message, ok = stringValue(raw)
		}
		if !ok {
			extra[key] = raw
		}
	}

	if res.QRCodeBase64 == "" {
		res.QRCodeBase64 = res.QRCode
	}
	res.QRCodeBase64 = NormalizeQRCode(res.QRCodeBase64)

	if !hasSuccess {
		res.Success = res.QRCodeBase64 != ""
	}
	if res.QRCodeBase64 == "" && res.Message == "" {
		res.Message = strings.TrimSpace(string(body))
	}
	if len(extra) > 0 {
		res.Extra = extra
	}

	return res
}

// classifyAuth turns an authuser body into a result.
func classifyAuth(body []byte) *AuthResult {
	if fields, ok := decodeObject(body); ok {
		return authFromJSON(fields, body)
	}
	return authFromText(bodyText(body))
}

// authFromText classifies a plain-text answer by its wording. Expired
// credentials are never a success, and neither is an empty answer.
func authFromText(text string) *AuthResult {
	if strings.TrimSpace(text) == "" {
		return &AuthResult{Message: EmptyResponseMessage}
	}

	expired := mentionsExpired(text)
	return &AuthResult{
		Success: !expired &&
			!strings.Contains(text, phraseMissingCredentials) &&
			!strings.Contains(text, phraseError),
		Message: text,
		Expired: expired,
	}
}

// authFromJSON keeps what the backend said. The message wording is only
// consulted when the backend gave no verdict.
func authFromJSON(fields map[string]json.RawMessage, body []byte) *AuthResult {
	message, _ := stringValue(fields["message"])
	hasMessage := message != ""

	res := &AuthResult{Message: message}
	if !hasMessage {
		res.Message = strings.TrimSpace(string(body))
	}

	success, hasSuccess := boolValue(fields["success"])
	expired, hasExpired := boolValue(fields["expired"])

	if hasSuccess {
		res.Success = success
		res.Expired = hasExpired && expired
	} else {
		derived := authFromText(message)
		res.Expired = derived.Expired
		if hasExpired {
			res.Expired = expired
		}
		// Without a verdict or a message there is nothing to go on.
		res.Success = hasMessage && derived.Success && !res.Expired
	}

	// Expired credentials are never a success.
	if res.Success {
		res.Expired = false
	}

	return res
}

func mentionsExpired(text string) bool {
	return strings.Contains(strings.ToLower(text), phraseExpired)
}

// decodeObject reports whether body is a JSON object and returns its fields.
func decodeObject(body []byte) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

// bodyText returns the body as text, unwrapping a JSON string literal.
func bodyText(body []byte) string {
	var s string
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte(`"`)) && json.Unmarshal(body, &s) == nil {
		return s
	}
	return string(body)
}

func stringValue(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

func boolValue(raw json.RawMessage) (bool, bool) {
	var b bool
	if len(raw) == 0 || json.Unmarshal(raw, &b) != nil {
		return false, false
	}
	return b, true
}
