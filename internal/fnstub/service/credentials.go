package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/portal/internal/fnstub/store"
	"github.com/aussiebroadwan/portal/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultIssuer = "Portal"
	DefaultQRSize = 256

	totpPeriod = 30
)

var (
	ErrMissingUsername    = errors.New("username is required")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrAuthentication     = errors.New("authentication error")
	ErrCredentialsExpired = errors.New("credentials expired")
)

// Provisioned is the outcome of a generation call. Value is the generated
// password or TOTP secret; QRCode is a PNG encoding it.
type Provisioned struct {
	Value  string
	QRCode []byte
}

type CredentialService struct {
	Store   store.Store
	Hasher  cryptox.Hasher
	Secrets *cryptox.SecretBox // seals TOTP secrets at rest

	Issuer string // TOTP issuer shown by authenticator apps
	QRSize int    // QR image width and height in pixels

	// MaxPasswordAge expires passwords older than this. Zero never expires.
	MaxPasswordAge time.Duration

	// Now is overridable for tests.
	Now func() time.Time
}

// GeneratePassword creates or resets the user's password and returns it with
// a QR code of the plain password.
func (s *CredentialService) GeneratePassword(ctx context.Context, username string) (Provisioned, error) {
	if username == "" {
		return Provisioned{}, ErrMissingUsername
	}

	password, err := cryptox.GeneratePassword(cryptox.DefaultPasswordLength)
	if err != nil {
		return Provisioned{}, err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return Provisioned{}, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.Store.Users().SetPassword(ctx, username, hash, s.now()); err != nil {
		return Provisioned{}, fmt.Errorf("failed to store password: %w", err)
	}

	qr, err := encodeQR(password, s.qrSize())
	if err != nil {
		return Provisioned{}, err
	}

	return Provisioned{Value: password, QRCode: qr}, nil
}

// Generate2FA replaces the user's TOTP secret and returns it with a QR code
// of its otpauth:// URL.
func (s *CredentialService) Generate2FA(ctx context.Context, username string) (Provisioned, error) {
	if username == "" {
		return Provisioned{}, ErrMissingUsername
	}

	issuer := s.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: username,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Provisioned{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	sealed, err := s.Secrets.Seal(key.Secret())
	if err != nil {
		return Provisioned{}, fmt.Errorf("failed to seal TOTP secret: %w", err)
	}

	if err := s.Store.Users().SetTOTPSecret(ctx, username, sealed, s.now()); err != nil {
		return Provisioned{}, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	qr, err := encodeKeyQR(key, s.qrSize())
	if err != nil {
		return Provisioned{}, err
	}

	return Provisioned{Value: key.Secret(), QRCode: qr}, nil
}

// Authenticate checks a password and TOTP code. Unknown users, wrong
// passwords, wrong codes and users without a 2FA secret all return
// ErrAuthentication. ErrCredentialsExpired is only returned once everything
// else checked out.
func (s *CredentialService) Authenticate(ctx context.Context, username, password, code string) error {
	if username == "" || password == "" || code == "" {
		return ErrMissingCredentials
	}

	user, err := s.Store.Users().Get(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAuthentication
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if user.PasswordHash == "" || user.TOTPSecret == "" {
		return ErrAuthentication
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			return ErrAuthentication
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}

	secret, err := s.Secrets.Open(user.TOTPSecret)
	if err != nil {
		return fmt.Errorf("failed to open TOTP secret: %w", err)
	}

	now := s.now()
	valid, err := totp.ValidateCustom(code, secret, now, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !valid {
		return ErrAuthentication
	}

	if s.MaxPasswordAge > 0 && now.Sub(user.PasswordSetAt) > s.MaxPasswordAge {
		return ErrCredentialsExpired
	}

	return nil
}

func (s *CredentialService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CredentialService) qrSize() int {
	if s.QRSize > 0 {
		return s.QRSize
	}
	return DefaultQRSize
}
