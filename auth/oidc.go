package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// IdentityVerifier checks an external ID token and returns the verified email.
type IdentityVerifier interface {
	VerifyEmail(ctx context.Context, rawIDToken string) (string, error)
}

var ErrUnverifiedEmail = errors.New("identity provider did not verify the email")

// OIDCVerifier verifies ID tokens issued for clientID by an OpenID Connect provider.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier runs provider discovery against issuer.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery for %s: %w", issuer, err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (v *OIDCVerifier) VerifyEmail(ctx context.Context, rawIDToken string) (string, error) {
	token, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := token.Claims(&claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return "", ErrUnverifiedEmail
	}
	return claims.Email, nil
}
