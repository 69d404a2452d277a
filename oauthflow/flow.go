// Package oauthflow drives the client side of the authorization-code flow:
// building the provider redirect and exchanging the returned code for tokens.
package oauthflow

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/mkobayashi/summarize-portal/internal/errors"
	"github.com/mkobayashi/summarize-portal/sessions"
)

const (
	// authorizePath and tokenPath follow the provider's OIDC layout
	authorizePath = "/oidc/v1/authorize"
	tokenPath     = "/oidc/v1/token"

	// stateLength is the byte length of the state and nonce values before
	// base64url encoding. 32 bytes = 256 bits of entropy.
	stateLength = 32
)

// Config holds the provider and client settings for the flow
type Config struct {
	ProviderHost string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// Flow builds authorization redirects and performs the code-for-token
// exchange. It keeps no per-session state; state and nonce live in the
// session's AuthRequest.
type Flow struct {
	oauth *oauth2.Config
}

// New creates a Flow against the given provider
func New(cfg Config) *Flow {
	return &Flow{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  strings.TrimSuffix(cfg.ProviderHost, "/") + authorizePath,
				TokenURL: strings.TrimSuffix(cfg.ProviderHost, "/") + tokenPath,
				// Client credentials travel in the POST body, not a Basic header
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// NewAuthRequest generates a fresh authorization request with
// cryptographically random state and nonce values
func (f *Flow) NewAuthRequest() sessions.AuthRequest {
	return sessions.AuthRequest{
		State:       generateRandomString(stateLength),
		Nonce:       generateRandomString(stateLength),
		RedirectURI: f.oauth.RedirectURL,
		Scope:       strings.Join(f.oauth.Scopes, " "),
		CreatedAt:   time.Now(),
	}
}

// AuthCodeURL returns the provider redirect target for the given request.
// Pure URL construction; no network call happens here.
func (f *Flow) AuthCodeURL(req sessions.AuthRequest) string {
	return f.oauth.AuthCodeURL(req.State, oauth2.SetAuthURLParam("nonce", req.Nonce))
}

// Exchange trades an authorization code for a token set. A single attempt,
// no retry; failures surface as a TokenExchangeError carrying the provider's
// error description when one was returned.
func (f *Flow) Exchange(ctx context.Context, code string) (sessions.TokenSet, error) {
	token, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			exchangeErr := &apperrors.TokenExchangeError{
				Code:        retrieveErr.ErrorCode,
				Description: retrieveErr.ErrorDescription,
				Err:         err,
			}
			if retrieveErr.Response != nil {
				exchangeErr.StatusCode = retrieveErr.Response.StatusCode
			}
			return sessions.TokenSet{}, exchangeErr
		}
		return sessions.TokenSet{}, &apperrors.TokenExchangeError{Err: err}
	}

	tokenSet := sessions.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		tokenSet.IDToken = idToken
	}
	return tokenSet, nil
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
