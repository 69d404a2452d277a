package sessions

import "time"

// TokenSet holds the tokens returned by the provider's token endpoint.
// It is immutable once stored; re-authentication replaces it wholesale.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
}

// UserIdentity is derived from the identity token's claims. NonceMismatch is
// set when the token's nonce claim did not match the one sent with the
// authorization request; the identity is still accepted but the mismatch must
// stay observable.
type UserIdentity struct {
	Subject       string
	Email         string
	DisplayName   string
	Picture       string
	Issuer        string
	Audience      string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Claims        map[string]any
	NonceMismatch bool
}

// AuthRequest tracks an in-flight authorization redirect. It is single-use:
// the callback consumes it exactly once, whatever the outcome.
type AuthRequest struct {
	State       string
	Nonce       string
	RedirectURI string
	Scope       string
	CreatedAt   time.Time
}

// PendingAction is the one user action parked for replay after
// authentication. A new submission overwrites an existing one.
type PendingAction struct {
	Payload     string
	SubmittedAt time.Time
}

// Result is the outcome of the most recent invocation
type Result struct {
	InputSummary string
	Output       string
	CompletedAt  time.Time
}

// Session is the per-user state record. All fields besides ID are optional
// and owned exclusively by the Repo; mutations go through Repo.Update.
type Session struct {
	ID            string
	TokenSet      *TokenSet
	UserIdentity  *UserIdentity
	PendingAction *PendingAction
	LastResult    *Result
	AuthRequest   *AuthRequest
}

// Authenticated reports whether the session holds a usable access token
func (s *Session) Authenticated() bool {
	return s.TokenSet != nil && s.TokenSet.AccessToken != ""
}

// clone returns a deep copy so callers can never mutate stored state directly
func (s *Session) clone() Session {
	out := Session{ID: s.ID}
	if s.TokenSet != nil {
		ts := *s.TokenSet
		out.TokenSet = &ts
	}
	if s.UserIdentity != nil {
		ui := *s.UserIdentity
		if s.UserIdentity.Claims != nil {
			ui.Claims = make(map[string]any, len(s.UserIdentity.Claims))
			for k, v := range s.UserIdentity.Claims {
				ui.Claims[k] = v
			}
		}
		out.UserIdentity = &ui
	}
	if s.PendingAction != nil {
		pa := *s.PendingAction
		out.PendingAction = &pa
	}
	if s.LastResult != nil {
		lr := *s.LastResult
		out.LastResult = &lr
	}
	if s.AuthRequest != nil {
		ar := *s.AuthRequest
		out.AuthRequest = &ar
	}
	return out
}
