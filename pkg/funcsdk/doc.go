/*
Package funcsdk is a client for the serverless authentication functions that
back the portal.

The backend exposes three POST endpoints below a common base URL:

  - gen-password: issues a password for a user and returns it as a QR code
  - generate2fa:  issues a TOTP secret for a user and returns it as a QR code
  - authuser:     checks a username, password and one-time code

The functions do not agree on a response format. Depending on the deployment
they answer with a JSON object, a bare base64-encoded PNG, or a plain-text
sentence. Client hides that behind three typed results:

	client := funcsdk.NewClient("https://functions.example.com/function")

	res, err := client.GeneratePassword(ctx, "alice")
	// res.QRCodeBase64 is always a data URI ready for an <img src>.

	auth, err := client.AuthenticateUser(ctx, funcsdk.Credentials{
		Username: "alice",
		Password: password,
		OTP:      code,
	})
	if err == nil && auth.Expired {
		// send the user to /renew
	}

# Normalization

A JSON object body is decoded as-is; when it carries a "qrcode" field but no
"qrcode_base64", the latter is synthesized by prefixing the PNG data URI
header. A non-JSON body that starts with the base64 PNG signature is wrapped
into a result with a placeholder password or secret. Anything else becomes a
message-only result. For authuser a text body is classified by its wording:
"Missing credentials" or "error" means failure and "expired" marks expired
credentials.

Whatever the body looks like, a successful HTTP exchange never produces an
error. Non-2xx responses produce *RequestError and transport failures produce
*NetworkError. Nothing is retried.
*/
package funcsdk
