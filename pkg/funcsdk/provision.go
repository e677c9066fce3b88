package funcsdk

import "context"

// provisioning describes one of the two QR provisioning endpoints. They only
// differ in the name of the field carrying the generated value.
type provisioning struct {
	endpoint    string
	operation   string
	field       string
	placeholder string
}

var (
	passwordProvisioning = provisioning{
		endpoint:    EndpointGenPassword,
		operation:   "password generation",
		field:       "password",
		placeholder: "Generated password",
	}
	secretProvisioning = provisioning{
		endpoint:    EndpointGenerate2FA,
		operation:   "2FA generation",
		field:       "secret",
		placeholder: "Generated 2FA secret",
	}
)

// set stores v in the field this endpoint uses.
func (p provisioning) set(res *ProvisioningResult, v string) {
	if p.field == "secret" {
		res.Secret = v
		return
	}
	res.Password = v
}

// GeneratePassword asks gen-password to issue a new password for username.
func (c *Client) GeneratePassword(ctx context.Context, username string) (*ProvisioningResult, error) {
	return c.provision(ctx, passwordProvisioning, username)
}

// Generate2FA asks generate2fa to issue a new TOTP secret for username.
func (c *Client) Generate2FA(ctx context.Context, username string) (*ProvisioningResult, error) {
	return c.provision(ctx, secretProvisioning, username)
}

func (c *Client) provision(ctx context.Context, p provisioning, username string) (*ProvisioningResult, error) {
	body, err := c.post(ctx, p.endpoint, p.operation, usernameRequest{Username: username})
	if err != nil {
		return nil, err
	}
	return classifyProvisioning(body, p), nil
}
