package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/mkobayashi/summarize-portal/internal/errors"
	"github.com/mkobayashi/summarize-portal/sessions"
)

// VerifyingExtractor checks signature, issuer, and audience before accepting
// any claim. Unlike UnverifiedExtractor it fails hard: a token that does not
// verify yields an IdentityDecodeError instead of a placeholder identity.
type VerifyingExtractor struct {
	verifier *oidc.IDTokenVerifier
}

var _ Extractor = &VerifyingExtractor{}

// NewVerifying creates a VerifyingExtractor using the issuer's published
// OIDC discovery document and JWKS
func NewVerifying(ctx context.Context, issuer, clientID string) (*VerifyingExtractor, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("[identity NewVerifying] failed to create OIDC provider: %w", err)
	}
	return &VerifyingExtractor{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Extract verifies the identity token and maps its claims
func (e *VerifyingExtractor) Extract(ctx context.Context, rawIDToken, expectedNonce string) (sessions.UserIdentity, error) {
	if rawIDToken == "" {
		return sessions.UserIdentity{}, &apperrors.IdentityDecodeError{Err: fmt.Errorf("no identity token in response")}
	}

	idToken, err := e.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return sessions.UserIdentity{}, &apperrors.IdentityDecodeError{Err: err}
	}

	claims := jwt.MapClaims{}
	if err := idToken.Claims(&claims); err != nil {
		return sessions.UserIdentity{}, &apperrors.IdentityDecodeError{Err: err}
	}

	ident := identityFromClaims(claims)
	if idToken.Nonce != "" && idToken.Nonce != expectedNonce {
		return sessions.UserIdentity{}, &apperrors.IdentityDecodeError{Err: fmt.Errorf("nonce mismatch")}
	}
	return ident, nil
}
