package funcsdk

import "encoding/json"

// Credentials is the authuser request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// usernameRequest is the gen-password and generate2fa request body.
type usernameRequest struct {
	Username string `json:"username"`
}

// ProvisioningResult is the normalized gen-password or generate2fa response.
// Exactly one of Password or Secret is meaningful, depending on the call.
type ProvisioningResult struct {
	Success bool `json:"success"`

	// QRCodeBase64 is a data:image/png;base64 URI.
	QRCodeBase64 string `json:"qrcode_base64,omitempty"`

	// QRCode is the raw "qrcode" value as sent by the backend, if any.
	QRCode string `json:"qrcode,omitempty"`

	Password string `json:"password,omitempty"`
	Secret   string `json:"secret,omitempty"`
	Message  string `json:"message,omitempty"`

	// Extra holds JSON fields the backend sent that have no typed home.
	// They are written back out by MarshalJSON.
	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON writes the typed fields merged over Extra.
func (r ProvisioningResult) MarshalJSON() ([]byte, error) {
	type plain ProvisioningResult

	typed, err := json.Marshal(plain(r))
	if err != nil || len(r.Extra) == 0 {
		return typed, err
	}

	merged := make(map[string]json.RawMessage, len(r.Extra)+6)
	for k, v := range r.Extra {
		merged[k] = v
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(typed, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}

	return json.Marshal(merged)
}

// AuthResult is the normalized authuser response.
type AuthResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	// Expired is set when the backend rejected the credentials because
	// they are too old. The user should renew them.
	Expired bool `json:"expired,omitempty"`
}
