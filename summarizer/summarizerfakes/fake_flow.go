package summarizerfakes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkobayashi/summarize-portal/sessions"
)

// FakeAuthFlow is a deterministic AuthFlow implementation for tests
type FakeAuthFlow struct {
	mu sync.Mutex

	// NextState and NextNonce seed the next NewAuthRequest call
	NextState string
	NextNonce string

	// ExchangeTokenSet and ExchangeErr script the Exchange result
	ExchangeTokenSet sessions.TokenSet
	ExchangeErr      error

	// ExchangeCalls records every code passed to Exchange
	ExchangeCalls []string
}

// NewFakeAuthFlow creates a FakeAuthFlow with usable defaults
func NewFakeAuthFlow() *FakeAuthFlow {
	return &FakeAuthFlow{
		NextState: "fake-state",
		NextNonce: "fake-nonce",
		ExchangeTokenSet: sessions.TokenSet{
			AccessToken:  "fake-access-token",
			RefreshToken: "fake-refresh-token",
		},
	}
}

func (f *FakeAuthFlow) NewAuthRequest() sessions.AuthRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sessions.AuthRequest{
		State:       f.NextState,
		Nonce:       f.NextNonce,
		RedirectURI: "http://localhost:3000/oauth/callback",
		Scope:       "openid all-apis offline_access",
		CreatedAt:   time.Now(),
	}
}

func (f *FakeAuthFlow) AuthCodeURL(req sessions.AuthRequest) string {
	return fmt.Sprintf("https://provider.example.com/oidc/v1/authorize?state=%s&nonce=%s", req.State, req.Nonce)
}

func (f *FakeAuthFlow) Exchange(_ context.Context, code string) (sessions.TokenSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExchangeCalls = append(f.ExchangeCalls, code)
	if f.ExchangeErr != nil {
		return sessions.TokenSet{}, f.ExchangeErr
	}
	return f.ExchangeTokenSet, nil
}
