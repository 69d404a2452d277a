// Package summarizer orchestrates the portal's core flow: park a submitted
// text as the session's pending action, push the user through the
// authorization-code flow when needed, and replay the pending action exactly
// once after the callback completes.
package summarizer

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkobayashi/summarize-portal/identity"
	apperrors "github.com/mkobayashi/summarize-portal/internal/errors"
	"github.com/mkobayashi/summarize-portal/internal/metrics"
	"github.com/mkobayashi/summarize-portal/sessions"
)

// previewLength bounds the stored input preview, in runes
const previewLength = 100

// AuthFlow is the slice of the authorization-code flow the service needs:
// fresh state/nonce material, the provider redirect URL, and the
// code-for-token exchange.
type AuthFlow interface {
	NewAuthRequest() sessions.AuthRequest
	AuthCodeURL(req sessions.AuthRequest) string
	Exchange(ctx context.Context, code string) (sessions.TokenSet, error)
}

// Invoker issues one authenticated call to the serving endpoint
type Invoker interface {
	Invoke(ctx context.Context, accessToken, text string) (string, error)
}

// Service wires the session store, authorization flow, identity extraction,
// and the serving client together. All session mutations are single atomic
// Update calls; outbound HTTP never happens under the store lock.
type Service struct {
	sessions sessions.Repo
	flow     AuthFlow
	identity identity.Extractor
	serving  Invoker
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// New creates a Service
func New(repo sessions.Repo, flow AuthFlow, extractor identity.Extractor, invoker Invoker, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		sessions: repo,
		flow:     flow,
		identity: extractor,
		serving:  invoker,
		metrics:  m,
		log:      log.With().Str("component", "summarizer").Logger(),
	}
}

// Session returns the current state of a session, creating it on first
// access
func (s *Service) Session(sessionID string) (sessions.Session, error) {
	return s.sessions.Get(sessionID)
}

// Submit parks text as the session's pending action, replacing any earlier
// one. Authenticated sessions execute immediately; otherwise the caller is
// handed the provider redirect URL and the action waits for the callback.
func (s *Service) Submit(ctx context.Context, sessionID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.ErrEmptyInput
	}

	session, err := s.sessions.Update(sessionID, func(ss *sessions.Session) {
		ss.PendingAction = &sessions.PendingAction{Payload: text, SubmittedAt: time.Now()}
	})
	if err != nil {
		return "", err
	}

	if !session.Authenticated() {
		return s.beginAuthorization(sessionID)
	}

	if err := s.ExecutePending(ctx, sessionID); err != nil {
		return "", err
	}
	return "/", nil
}

// beginAuthorization stores a fresh authorization request on the session,
// invalidating any prior unconsumed one, and returns the redirect target
func (s *Service) beginAuthorization(sessionID string) (string, error) {
	req := s.flow.NewAuthRequest()
	if _, err := s.sessions.Update(sessionID, func(ss *sessions.Session) {
		ss.AuthRequest = &req
	}); err != nil {
		return "", err
	}
	s.metrics.AuthFlowsStarted.Inc()
	s.log.Info().Str("session", sessionID).Msg("Redirecting to identity provider")
	return s.flow.AuthCodeURL(req), nil
}

// HandleCallback runs the callback side of the state machine. The stored
// authorization request is consumed exactly once regardless of outcome;
// tokenSet is only written when the state matches and the exchange succeeds.
func (s *Service) HandleCallback(ctx context.Context, sessionID, code, state, errorParam, errorDesc string) error {
	var authReq *sessions.AuthRequest
	if _, err := s.sessions.Update(sessionID, func(ss *sessions.Session) {
		authReq = ss.AuthRequest
		ss.AuthRequest = nil
	}); err != nil {
		return err
	}

	if errorParam != "" {
		s.metrics.CallbacksRejected.Inc()
		return &apperrors.ProviderError{Code: errorParam, Description: errorDesc}
	}
	if code == "" || state == "" {
		s.metrics.CallbacksRejected.Inc()
		return apperrors.ErrMissingCallbackArg
	}
	if authReq == nil {
		s.metrics.CallbacksRejected.Inc()
		return apperrors.ErrNoAuthRequest
	}
	if state != authReq.State {
		s.metrics.CallbacksRejected.Inc()
		s.log.Warn().Str("session", sessionID).Msg("Rejected callback with mismatched state")
		return apperrors.ErrStateMismatch
	}
	s.metrics.CallbacksAccepted.Inc()

	tokenSet, err := s.flow.Exchange(ctx, code)
	if err != nil {
		s.metrics.TokenExchanges.WithLabelValues("error").Inc()
		return err
	}
	s.metrics.TokenExchanges.WithLabelValues("ok").Inc()

	ident, err := s.identity.Extract(ctx, tokenSet.IDToken, authReq.Nonce)
	if err != nil {
		return err
	}
	if ident.NonceMismatch {
		s.log.Warn().Str("session", sessionID).Msg("Identity token nonce did not match authorization request")
	}

	if _, err := s.sessions.Update(sessionID, func(ss *sessions.Session) {
		ss.TokenSet = &tokenSet
		ss.UserIdentity = &ident
	}); err != nil {
		return err
	}
	s.log.Info().Str("session", sessionID).Str("sub", ident.Subject).Msg("Session authenticated")

	return s.ExecutePending(ctx, sessionID)
}

// ExecutePending replays the session's pending action, if any. The action is
// claimed atomically before the invocation, so it runs at most once even
// when requests race; it is discarded whether the invocation succeeds or
// fails.
func (s *Service) ExecutePending(ctx context.Context, sessionID string) error {
	var pending *sessions.PendingAction
	var accessToken string
	session, err := s.sessions.Update(sessionID, func(ss *sessions.Session) {
		if !ss.Authenticated() || ss.PendingAction == nil {
			return
		}
		pending = ss.PendingAction
		accessToken = ss.TokenSet.AccessToken
		ss.PendingAction = nil
	})
	if err != nil {
		return err
	}
	if pending == nil {
		if session.PendingAction != nil {
			return apperrors.ErrNotAuthenticated
		}
		return nil
	}

	output, err := s.serving.Invoke(ctx, accessToken, pending.Payload)
	if err != nil {
		s.metrics.Invocations.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("session", sessionID).Msg("Invocation failed, pending action discarded")
		return err
	}
	s.metrics.Invocations.WithLabelValues("ok").Inc()

	if _, err := s.sessions.Update(sessionID, func(ss *sessions.Session) {
		ss.LastResult = &sessions.Result{
			InputSummary: truncatePayload(pending.Payload),
			Output:       output,
			CompletedAt:  time.Now(),
		}
	}); err != nil {
		return err
	}
	return nil
}

// LoadSample parks a canned sample text as the pending action
func (s *Service) LoadSample(sessionID string) error {
	_, err := s.sessions.Update(sessionID, func(ss *sessions.Session) {
		ss.PendingAction = &sessions.PendingAction{Payload: sampleText, SubmittedAt: time.Now()}
	})
	return err
}

// ClearResult drops the last result and any pending action. Idempotent.
func (s *Service) ClearResult(sessionID string) error {
	_, err := s.sessions.Update(sessionID, func(ss *sessions.Session) {
		ss.LastResult = nil
		ss.PendingAction = nil
	})
	return err
}

// Logout destroys the session record entirely
func (s *Service) Logout(sessionID string) error {
	return s.sessions.Destroy(sessionID)
}

// truncatePayload bounds the stored input preview
func truncatePayload(payload string) string {
	runes := []rune(payload)
	if len(runes) <= previewLength {
		return payload
	}
	return string(runes[:previewLength]) + "..."
}

// sampleText matches the demo text shipped with the original portal
const sampleText = `Data Engineering Design Patterns Data projects are an intrinsic part of an organization's technical ecosystem, but data engineers in many companies continue to work on problems that others have already solved. This hands-on guide shows you how to provide valuable data by focusing on various aspects of data engineering, including data ingestion, data quality, idempotency, and more. Author Bartosz Konieczny guides you through the process of building reliable end-to-end data engineering projects, from data ingestion to data observability, focusing on data engineering design patterns that solve common business problems in a secure and storage-optimized manner.`
