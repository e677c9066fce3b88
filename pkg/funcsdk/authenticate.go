package funcsdk

import "context"

// AuthenticateUser submits creds to authuser. A rejected login is reported
// through AuthResult.Success, not as an error.
func (c *Client) AuthenticateUser(ctx context.Context, creds Credentials) (*AuthResult, error) {
	body, err := c.post(ctx, EndpointAuthUser, "authentication", creds)
	if err != nil {
		return nil, err
	}
	return classifyAuth(body), nil
}
