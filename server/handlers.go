package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	apperrors "github.com/mkobayashi/summarize-portal/internal/errors"
)

// sessionCookieName is the cookie that keys the in-memory session store
const sessionCookieName = "summarize_session"

// sessionID returns the request's session id, minting one (and setting the
// cookie) on first contact
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   24 * 60 * 60, // 24 hours
	})
	return id
}

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.summaries.Session(s.sessionID(w, r))
		if err != nil {
			http.Error(w, "Failed to load session", http.StatusInternalServerError)
			return
		}

		data := map[string]any{
			"AppName":         s.config.GetAppName(),
			"IsAuthenticated": session.Authenticated(),
			"UserInfo":        session.UserIdentity,
			"PendingRequest":  session.PendingAction,
			"LastSummary":     session.LastResult,
			"Error":           r.URL.Query().Get("error"),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = s.indexTmpl.Execute(w, data)
	}
}

// SummarizeHandler parks the submitted text and either executes it or
// bounces the user to the identity provider
func (s *Server) SummarizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.sessionID(w, r)

		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, "/", "invalid form submission")
			return
		}

		target, err := s.summaries.Submit(r.Context(), sessionID, r.FormValue("text"))
		if err != nil {
			redirectWithError(w, r, "/", userMessage(err))
			return
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// CallbackHandler completes the authorization round-trip and replays the
// pending action
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := s.sessionID(w, r)
		query := r.URL.Query()

		err := s.summaries.HandleCallback(
			r.Context(),
			sessionID,
			query.Get("code"),
			query.Get("state"),
			query.Get("error"),
			query.Get("error_description"),
		)
		if err != nil {
			redirectWithError(w, r, "/", userMessage(err))
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// ExecutePendingHandler retries the parked action on user request
func (s *Server) ExecutePendingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.summaries.ExecutePending(r.Context(), s.sessionID(w, r)); err != nil {
			redirectWithError(w, r, "/", userMessage(err))
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// SampleHandler parks the canned sample text
func (s *Server) SampleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.summaries.LoadSample(s.sessionID(w, r)); err != nil {
			redirectWithError(w, r, "/", userMessage(err))
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// ClearHandler drops the last result and any pending action
func (s *Server) ClearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.summaries.ClearResult(s.sessionID(w, r)); err != nil {
			redirectWithError(w, r, "/", userMessage(err))
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// LogoutHandler destroys the session and expires its cookie
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			_ = s.summaries.Logout(cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// redirectWithError sends the user back to the home page with a visible
// error message
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(errorMsg), http.StatusSeeOther)
}

// userMessage maps flow errors onto the portal's user-visible messages
func userMessage(err error) string {
	var providerErr *apperrors.ProviderError
	var exchangeErr *apperrors.TokenExchangeError
	var invocationErr *apperrors.InvocationError

	switch {
	case errors.Is(err, apperrors.ErrEmptyInput):
		return "テキストを入力してください"
	case errors.As(err, &providerErr):
		return "認証エラー: " + providerErr.Code
	case errors.Is(err, apperrors.ErrStateMismatch),
		errors.Is(err, apperrors.ErrMissingCallbackArg),
		errors.Is(err, apperrors.ErrNoAuthRequest):
		return "無効な認証コールバック"
	case errors.As(err, &exchangeErr):
		return "トークン交換エラー: " + exchangeErr.Error()
	case errors.As(err, &invocationErr):
		return "要約実行エラー: " + invocationErr.Error()
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		return "認証または保留リクエストが見つかりません"
	default:
		return err.Error()
	}
}
